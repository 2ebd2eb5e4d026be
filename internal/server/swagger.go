package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title AgentLens API
// @version 0.1
// @description Interactive documentation for the AgentLens scan API.
// @contact.name AgentLens Maintainers
// @contact.url https://github.com/agentlens/agentlens
// @BasePath /
