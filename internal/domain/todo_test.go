package domain

import "testing"

func TestTodoRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     TodoRecord
		wantErr bool
	}{
		{"valid", TodoRecord{Text: "fix", File: "a.go", Line: 1}, false},
		{"empty text is fine", TodoRecord{File: "a.go", Line: 3}, false},
		{"missing file", TodoRecord{Text: "fix", Line: 1}, true},
		{"zero line", TodoRecord{Text: "fix", File: "a.go"}, true},
		{"negative line", TodoRecord{File: "a.go", Line: -4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIssueReference_HasTicket(t *testing.T) {
	bare := IssueReference{File: "f.less", Line: 7}
	if bare.HasTicket() {
		t.Error("bare reference should not have a ticket")
	}

	ticket := IssueReference{Key: "PM-42", Project: "PM", Number: 42, File: "f.js", Line: 13}
	if !ticket.HasTicket() {
		t.Error("ticket reference should have a ticket")
	}
	if got := ticket.Location(); got != "f.js:13" {
		t.Errorf("Location() = %q, want f.js:13", got)
	}
}

func TestProblemConstructors(t *testing.T) {
	ref := IssueReference{Key: "ABC-1", Project: "ABC", Number: 1, File: "x.py", Line: 2}
	status := IssueStatus{ID: 6, StatusName: "Closed", Type: 1, TypeName: "Bug"}

	p := StatusForbidden(ref, status)
	if p.Kind != ProblemStatusForbidden || p.Status == nil || p.Status.ID != 6 {
		t.Errorf("StatusForbidden() = %+v", p)
	}

	p = TypeForbidden(ref, status)
	if p.Kind != ProblemTypeForbidden || p.Status == nil || p.Status.TypeName != "Bug" {
		t.Errorf("TypeForbidden() = %+v", p)
	}

	p = WithoutTicket(IssueReference{File: "x.py", Line: 2})
	if p.Kind != ProblemWithoutTicket || p.Status != nil {
		t.Errorf("WithoutTicket() = %+v", p)
	}
}
