package domain

import "testing"

func TestChatStateConstants(t *testing.T) {
	states := []ChatState{
		ChatStateRefining,
		ChatStateSearching1,
		ChatStateEvaluating1,
		ChatStateSearching2,
		ChatStateEvaluating2,
		ChatStateAnswering,
		ChatStateDone,
		ChatStateNoContext,
		ChatStateNotAnswerable,
	}
	seen := make(map[ChatState]bool, len(states))
	for _, s := range states {
		if s == "" {
			t.Error("ChatState constant must not be empty")
		}
		if seen[s] {
			t.Errorf("duplicate ChatState value %q", s)
		}
		seen[s] = true
	}
}

func TestAnswerabilityVerdictDefaults(t *testing.T) {
	var v AnswerabilityVerdict
	if v.Answerable {
		t.Error("zero-value AnswerabilityVerdict should be unanswerable")
	}
	if v.SuggestedQuery != nil {
		t.Error("zero-value AnswerabilityVerdict.SuggestedQuery should be nil")
	}
}

func TestQueryRequestDefaults(t *testing.T) {
	var req QueryRequest
	if req.TopK != 0 {
		t.Errorf("zero-value QueryRequest.TopK = %d, want 0", req.TopK)
	}
}

func TestChatRequestHistoryOptional(t *testing.T) {
	req := ChatRequest{Message: "hi"}
	if req.History != nil {
		t.Error("ChatRequest.History should default to nil")
	}
	if req.StreamSteps {
		t.Error("ChatRequest.StreamSteps should default to false")
	}
}

func TestIndexRunReportAggregatesProviders(t *testing.T) {
	report := IndexRunReport{
		ProvidersProcessed: 2,
		Providers: []ProviderRunReport{
			{Pair: ProviderPair{ProviderType: "local", ProviderName: "a"}, DocumentsProcessed: 3},
			{Pair: ProviderPair{ProviderType: "s3", ProviderName: "b"}, DocumentsProcessed: 5},
		},
	}
	if len(report.Providers) != report.ProvidersProcessed {
		t.Errorf("len(Providers) = %d, ProvidersProcessed = %d", len(report.Providers), report.ProvidersProcessed)
	}
}

func TestProviderRunReportErrField(t *testing.T) {
	r := ProviderRunReport{Err: "connection refused"}
	if r.Err == "" {
		t.Error("Err should carry the failure message")
	}
}
