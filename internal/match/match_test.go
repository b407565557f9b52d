package match

import (
	"testing"

	"github.com/mypay/organizze-sync/internal/organizze"
)

func candidate(id int64, description, date string, amountCents int64) organizze.Transaction {
	return organizze.Transaction{
		ID:          id,
		Description: description,
		Date:        date,
		AmountCents: amountCents,
	}
}

func TestFind_ExactMatch(t *testing.T) {
	local := Local{Description: "Uber Trip", Date: "2026-01-05", Amount: 23.50}
	candidates := []organizze.Transaction{
		candidate(1, "Padaria", "2026-01-05", -1200),
		candidate(2, "UBER TRIP", "2026-01-05", -2350),
	}

	got, kind := Find(local, candidates)
	if kind != Exact {
		t.Fatalf("Find() kind = %v, want Exact", kind)
	}
	if got.ID != 2 {
		t.Errorf("Find() matched id %d, want 2", got.ID)
	}
}

func TestFind_ExactBeatsEarlierPartial(t *testing.T) {
	// A partial candidate appears before the exact one; the exact pass runs
	// over the whole list first, so the exact candidate must win.
	local := Local{Description: "Mercado", Date: "2026-02-01", Amount: 50}
	candidates := []organizze.Transaction{
		candidate(1, "Mercado Central", "2026-02-01", -5000),
		candidate(2, "Mercado", "2026-02-01", -5000),
	}

	got, kind := Find(local, candidates)
	if kind != Exact {
		t.Fatalf("Find() kind = %v, want Exact", kind)
	}
	if got.ID != 2 {
		t.Errorf("Find() matched id %d, want 2", got.ID)
	}
}

func TestFind_PartialMatch(t *testing.T) {
	tests := []struct {
		name      string
		local     string
		remote    string
		wantMatch bool
	}{
		{"local contained in remote", "uber", "Uber Trip Downtown", true},
		{"remote contained in local", "Uber Trip Downtown", "uber trip", true},
		{"no containment", "taxi ride", "Uber Trip", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := Local{Description: tt.local, Date: "2026-01-05", Amount: 23.50}
			candidates := []organizze.Transaction{candidate(1, tt.remote, "2026-01-05", -2350)}

			got, kind := Find(local, candidates)
			if tt.wantMatch && kind != Partial {
				t.Fatalf("Find() kind = %v, want Partial", kind)
			}
			if !tt.wantMatch && kind != None {
				t.Fatalf("Find() kind = %v, want None (got id %d)", kind, got.ID)
			}
		})
	}
}

func TestFind_ContainmentAloneIsNotEnough(t *testing.T) {
	local := Local{Description: "uber", Date: "2026-01-05", Amount: 23.50}

	tests := []struct {
		name      string
		candidate organizze.Transaction
	}{
		{"wrong date", candidate(1, "Uber Trip", "2026-01-06", -2350)},
		{"amount outside tolerance", candidate(1, "Uber Trip", "2026-01-05", -2360)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, kind := Find(local, []organizze.Transaction{tt.candidate}); kind != None {
				t.Errorf("Find() kind = %v, want None", kind)
			}
		})
	}
}

func TestFind_AmountTolerance(t *testing.T) {
	local := Local{Description: "lunch", Date: "2026-01-05", Amount: 10.00}

	// A one-cent rounding difference is tolerated; three cents is not.
	if _, kind := Find(local, []organizze.Transaction{candidate(1, "lunch", "2026-01-05", -1001)}); kind != Exact {
		t.Errorf("difference of 0.01 did not match, want Exact")
	}
	if _, kind := Find(local, []organizze.Transaction{candidate(1, "lunch", "2026-01-05", -1003)}); kind != None {
		t.Errorf("difference of 0.03 matched, want None")
	}
}

func TestFind_FirstHitWins(t *testing.T) {
	local := Local{Description: "café", Date: "2026-01-05", Amount: 8.50}
	candidates := []organizze.Transaction{
		candidate(10, "Café", "2026-01-05", -850),
		candidate(20, "café", "2026-01-05", -850),
	}

	got, kind := Find(local, candidates)
	if kind != Exact {
		t.Fatalf("Find() kind = %v, want Exact", kind)
	}
	if got.ID != 10 {
		t.Errorf("Find() matched id %d, want first candidate (10)", got.ID)
	}
}

func TestFind_NoCandidates(t *testing.T) {
	local := Local{Description: "anything", Date: "2026-01-05", Amount: 1}
	if got, kind := Find(local, nil); kind != None || got != nil {
		t.Errorf("Find() = (%v, %v), want (nil, None)", got, kind)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Uber Trip", "uber trip"},
		{"  PADARIA  ", "padaria"},
		{"a  b", "a b"},
		// Shallow collapse: a run of three spaces becomes two, not one.
		{"a   b", "a  b"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalize(tt.input); got != tt.want {
				t.Errorf("normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
