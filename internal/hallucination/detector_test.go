package hallucination

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/provider"
	"github.com/agentlens/agentlens/internal/testutil"
)

// richPage carries enough words to clear the claim-extraction floor.
const richPage = `<html><body><main>
<p>Acme Corporation builds industrial widgets and has been operating factories
across three continents for decades, serving thousands of manufacturing
customers with custom tooling, spare parts, on-site maintenance contracts and
training programs for plant operators in multiple languages.</p>
<p>The company employs 4000 people and reported strong growth last year.</p>
</main></body></html>`

const claimsJSON = `[
{"statement":"Acme employs 4000 people","category":"number","confidence":0.7,"status":"unverified","evidence":"","context":"employs 4000 people"},
{"statement":"Acme operates on three continents","category":"claim","confidence":0.8,"status":"verified","evidence":"widely reported","context":"factories across three continents"},
{"statement":"Acme was founded in 1990","category":"date","confidence":0.9,"status":"contradicts","evidence":"founded in 1985","context":"for decades"}
]`

func TestDetectWithProvider(t *testing.T) {
	p := &testutil.DummyProvider{Fallback: claimsJSON}
	d, err := New(p, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := d.Detect(context.Background(), mustDoc(t, richPage))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	s := report.Summary
	if s.TotalFacts != 3 || s.VerifiedFacts != 1 || s.UnverifiedFacts != 1 || s.ModelContradictions != 1 {
		t.Fatalf("summary wrong: %+v", s)
	}

	// 1 unverified x 7 + 1 model contradiction x 25 = 32.
	if report.RiskScore != 32 {
		t.Fatalf("risk score %d, want 32", report.RiskScore)
	}

	var haveMissing, haveContradiction bool
	for _, trigger := range report.Triggers {
		switch trigger.Type {
		case model.TriggerMissingFact:
			haveMissing = true
			if trigger.Severity != model.SeverityMedium {
				t.Errorf("1 unverified claim should be medium, got %q", trigger.Severity)
			}
		case model.TriggerContradiction:
			haveContradiction = true
			if trigger.Severity != model.SeverityCritical {
				t.Errorf("model contradiction should be critical, got %q", trigger.Severity)
			}
		}
	}
	if !haveMissing || !haveContradiction {
		t.Fatalf("expected missing_fact and contradiction triggers, got %+v", report.Triggers)
	}

	if len(report.Verifications) != 3 {
		t.Fatalf("expected 3 verifications, got %d", len(report.Verifications))
	}
	if report.Verifications[0].Fact.ID != "fact-001" {
		t.Fatalf("fact ids not assigned: %q", report.Verifications[0].Fact.ID)
	}
	if !report.Verifications[1].Verified {
		t.Fatal("verified claim not marked verified")
	}
	if len(report.Verifications[2].Contradictions) != 1 {
		t.Fatal("contradicting claim should carry the model's counter-statement")
	}
}

func TestDetectWithoutProviderIsLocalOnly(t *testing.T) {
	d, err := New(nil, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := d.Detect(context.Background(), mustDoc(t, richPage))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if report.Summary.TotalFacts != 0 {
		t.Fatalf("no provider means no fact checks, got %d", report.Summary.TotalFacts)
	}
	if len(report.Recommendations) == 0 {
		t.Fatal("report should always carry recommendations")
	}
}

func TestDetectKeepsLocalReportOnProviderError(t *testing.T) {
	p := &testutil.DummyProvider{Err: errors.New("backend down")}
	d, err := New(p, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := d.Detect(context.Background(), mustDoc(t, richPage))
	if err == nil {
		t.Fatal("expected the provider error to surface")
	}
	if report == nil {
		t.Fatal("degraded report must still be returned")
	}
	if report.Summary.TotalFacts != 0 {
		t.Fatalf("failed model path must not contribute facts, got %d", report.Summary.TotalFacts)
	}
}

func TestDetectSurfacesRateLimit(t *testing.T) {
	p := &testutil.DummyProvider{Err: provider.ErrRateLimited}
	d, err := New(p, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = d.Detect(context.Background(), mustDoc(t, richPage))
	if !errors.Is(err, provider.ErrRateLimited) {
		t.Fatalf("rate limit must survive wrapping, got %v", err)
	}
}

func TestThinContentSkipsClaimExtraction(t *testing.T) {
	p := &testutil.DummyProvider{Fallback: claimsJSON}
	d, err := New(p, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report, err := d.Detect(context.Background(), mustDoc(t, `<html><body><p>Too short.</p></body></html>`))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(p.Calls) != 0 {
		t.Fatalf("thin content must not reach the provider, saw %d calls", len(p.Calls))
	}
	if report.Summary.TotalFacts != 0 {
		t.Fatalf("expected empty summary, got %+v", report.Summary)
	}
}

func TestParseClaimsToleratesFences(t *testing.T) {
	content := "Here you go:\n```json\n" + claimsJSON + "\n```"
	claims, err := parseClaims(content)
	if err != nil {
		t.Fatalf("parseClaims: %v", err)
	}
	if len(claims) != 3 {
		t.Fatalf("expected 3 claims, got %d", len(claims))
	}
	if !strings.Contains(claims[0].Statement, "4000") {
		t.Fatalf("unexpected first claim: %+v", claims[0])
	}
}
