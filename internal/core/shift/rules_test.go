package shift

import (
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
)

func intPtr(v int) *int {
	return &v
}

var (
	regular = &concept.WorkConcept{ID: 1, Name: concept.NameRegular, MinHours: intPtr(6), MaxHours: intPtr(8), CountsAsWorkday: true}
	extra   = &concept.WorkConcept{ID: 2, Name: concept.NameExtra, MinHours: intPtr(2), MaxHours: intPtr(6), CountsAsWorkday: true}
	dayOff  = &concept.WorkConcept{ID: 3, Name: concept.NameDayOff}
	// 時間範囲を持たない任意区分です。
	openEnded = &concept.WorkConcept{ID: 4, Name: "Guardia", CountsAsWorkday: true}
)

// 2025-03-12 は水曜日です。
var wednesday = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

func rec(c *concept.WorkConcept, day time.Time, hours *int) *Record {
	return &Record{ConceptID: c.ID, Concept: c, Date: day, WorkedHours: hours}
}

func TestEngine_Validate(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultLimits())
	monday := wednesday.AddDate(0, 0, -2)
	tuesday := wednesday.AddDate(0, 0, -1)

	cases := []struct {
		name     string
		proposal Proposal
		snapshot *Snapshot
		want     Rule
		contains string
	}{
		{
			name:     "hours required for regular shift",
			proposal: Proposal{Concept: regular, Date: wednesday},
			want:     RuleHoursRequired,
			contains: "obligatorio",
		},
		{
			name:     "hours forbidden for day off",
			proposal: Proposal{Concept: dayOff, Date: wednesday, WorkedHours: intPtr(8)},
			want:     RuleHoursForbidden,
			contains: "no requiere",
		},
		{
			name:     "hours above range",
			proposal: Proposal{Concept: regular, Date: wednesday, WorkedHours: intPtr(9)},
			want:     RuleHoursRange,
			contains: "6 - 8",
		},
		{
			name:     "hours below range",
			proposal: Proposal{Concept: extra, Date: wednesday, WorkedHours: intPtr(1)},
			want:     RuleHoursRange,
			contains: "2 - 6",
		},
		{
			name:     "range bounds are inclusive",
			proposal: Proposal{Concept: regular, Date: wednesday, WorkedHours: intPtr(8)},
		},
		{
			name:     "concept without range accepts any hours",
			proposal: Proposal{Concept: openEnded, Date: wednesday, WorkedHours: intPtr(12)},
		},
		{
			name:     "weekly cap exceeded",
			proposal: Proposal{Concept: openEnded, Date: wednesday, WorkedHours: intPtr(5)},
			snapshot: &Snapshot{Weekly: []*Record{
				rec(openEnded, monday, intPtr(14)),
				rec(openEnded, monday, intPtr(0)),
				rec(openEnded, tuesday, intPtr(14)),
				rec(openEnded, wednesday.AddDate(0, 0, 2), intPtr(14)),
				rec(openEnded, wednesday.AddDate(0, 0, 3), intPtr(8)),
			}},
			want:     RuleWeeklyHours,
			contains: "52 horas semanales",
		},
		{
			name:     "daily cap exceeded",
			proposal: Proposal{Concept: extra, Date: wednesday, WorkedHours: intPtr(6)},
			snapshot: &Snapshot{Weekly: []*Record{
				rec(openEnded, wednesday, intPtr(9)),
				rec(openEnded, tuesday, intPtr(8)),
			}, Monthly: []*Record{rec(openEnded, wednesday, intPtr(9))}},
			want:     RuleDailyHours,
			contains: "14 horas",
		},
		{
			name:     "daily cap reached exactly is accepted",
			proposal: Proposal{Concept: extra, Date: wednesday, WorkedHours: intPtr(6)},
			snapshot: &Snapshot{Weekly: []*Record{rec(regular, wednesday, intPtr(8))}},
		},
		{
			name:     "monthly cap exceeded",
			proposal: Proposal{Concept: regular, Date: wednesday, WorkedHours: intPtr(8)},
			snapshot: &Snapshot{Monthly: monthlyHistory(186)},
			want:     RuleMonthlyHours,
			contains: "190 horas mensuales",
		},
		{
			name:     "third day off in a week",
			proposal: Proposal{Concept: dayOff, Date: wednesday},
			snapshot: &Snapshot{Weekly: []*Record{rec(dayOff, monday, nil), rec(dayOff, tuesday, nil)}},
			want:     RuleWeeklyDaysOff,
			contains: "esta semana",
		},
		{
			name:     "sixth day off in a month",
			proposal: Proposal{Concept: dayOff, Date: wednesday},
			snapshot: &Snapshot{Monthly: []*Record{
				rec(dayOff, wednesday.AddDate(0, 0, -10), nil),
				rec(dayOff, wednesday.AddDate(0, 0, -9), nil),
				rec(dayOff, wednesday.AddDate(0, 0, -4), nil),
				rec(dayOff, wednesday.AddDate(0, 0, -3), nil),
				rec(dayOff, wednesday.AddDate(0, 0, 8), nil),
			}},
			want:     RuleMonthlyDaysOff,
			contains: "este mes",
		},
		{
			name:     "week cap reported before month cap",
			proposal: Proposal{Concept: dayOff, Date: wednesday},
			snapshot: &Snapshot{
				Weekly:  []*Record{rec(dayOff, monday, nil), rec(dayOff, tuesday, nil)},
				Monthly: []*Record{rec(dayOff, monday, nil), rec(dayOff, tuesday, nil), rec(dayOff, wednesday.AddDate(0, 0, -9), nil), rec(dayOff, wednesday.AddDate(0, 0, -8), nil), rec(dayOff, wednesday.AddDate(0, 0, -7), nil)},
			},
			want: RuleWeeklyDaysOff,
		},
		{
			name:     "fourth extra shift in a week",
			proposal: Proposal{Concept: extra, Date: wednesday, WorkedHours: intPtr(2)},
			snapshot: &Snapshot{Weekly: []*Record{
				rec(extra, monday, intPtr(2)),
				rec(extra, tuesday, intPtr(2)),
				rec(extra, wednesday.AddDate(0, 0, 1), intPtr(2)),
			}},
			want:     RuleWeeklyExtraShifts,
			contains: "3 turnos extra",
		},
		{
			name:     "sixth regular shift in a week",
			proposal: Proposal{Concept: regular, Date: wednesday.AddDate(0, 0, 4), WorkedHours: intPtr(6)},
			snapshot: &Snapshot{Weekly: []*Record{
				rec(regular, monday, intPtr(6)),
				rec(regular, tuesday, intPtr(6)),
				rec(regular, wednesday, intPtr(6)),
				rec(regular, wednesday.AddDate(0, 0, 1), intPtr(6)),
				rec(regular, wednesday.AddDate(0, 0, 2), intPtr(6)),
			}},
			want:     RuleWeeklyRegularShifts,
			contains: "5 turnos normales",
		},
		{
			name:     "regular shifts do not count toward extra cap",
			proposal: Proposal{Concept: extra, Date: wednesday, WorkedHours: intPtr(2)},
			snapshot: &Snapshot{Weekly: []*Record{
				rec(regular, monday, intPtr(6)),
				rec(regular, tuesday, intPtr(6)),
				rec(regular, wednesday.AddDate(0, 0, 1), intPtr(6)),
			}},
		},
		{
			name:     "headcount reached",
			proposal: Proposal{Concept: regular, Date: wednesday, WorkedHours: intPtr(7)},
			snapshot: &Snapshot{SameDayConceptCount: 2},
			want:     RuleDailyHeadcount,
			contains: "2 empleados",
		},
		{
			name:     "second employee for concept and date",
			proposal: Proposal{Concept: regular, Date: wednesday, WorkedHours: intPtr(7)},
			snapshot: &Snapshot{SameDayConceptCount: 1},
		},
		{
			name:     "duplicate concept for employee and date",
			proposal: Proposal{Concept: regular, Date: wednesday, WorkedHours: intPtr(7)},
			snapshot: &Snapshot{SameDayConceptCount: 1, AlreadyRegistered: true},
			want:     RuleDuplicateConcept,
			contains: "ya tiene registrado",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := engine.Validate(tc.proposal, tc.snapshot)
			if d.Rule != tc.want {
				t.Fatalf("expected rule %q, got %q (%s)", tc.want, d.Rule, d.Reason)
			}
			if tc.want == "" {
				if !d.Accepted() || d.Err() != nil {
					t.Fatalf("expected acceptance, got %+v", d)
				}
				return
			}
			if !strings.Contains(d.Reason, tc.contains) {
				t.Fatalf("expected reason to contain %q, got %q", tc.contains, d.Reason)
			}
		})
	}
}

func TestEngine_WeeklyCapBoundary(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultLimits())
	snapshot := &Snapshot{Weekly: []*Record{
		rec(openEnded, wednesday.AddDate(0, 0, -2), intPtr(14)),
		rec(openEnded, wednesday.AddDate(0, 0, -1), intPtr(14)),
		rec(openEnded, wednesday.AddDate(0, 0, 1), intPtr(14)),
		rec(openEnded, wednesday.AddDate(0, 0, 2), intPtr(8)),
	}}

	if d := engine.Validate(Proposal{Concept: extra, Date: wednesday, WorkedHours: intPtr(5)}, snapshot); d.Rule != RuleWeeklyHours {
		t.Fatalf("expected weekly cap with 50+5 hours, got %+v", d)
	}
	if d := engine.Validate(Proposal{Concept: extra, Date: wednesday, WorkedHours: intPtr(2)}, snapshot); !d.Accepted() {
		t.Fatalf("expected 50+2 hours to be accepted, got %+v", d)
	}
}

func TestEngine_DayOffWeeklyBoundary(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultLimits())
	monday := wednesday.AddDate(0, 0, -2)

	one := &Snapshot{Weekly: []*Record{rec(dayOff, monday, nil)}, Monthly: []*Record{rec(dayOff, monday, nil)}}
	if d := engine.Validate(Proposal{Concept: dayOff, Date: wednesday}, one); !d.Accepted() {
		t.Fatalf("expected second day off to be accepted, got %+v", d)
	}

	two := &Snapshot{
		Weekly:  []*Record{rec(dayOff, monday, nil), rec(dayOff, wednesday, nil)},
		Monthly: []*Record{rec(dayOff, monday, nil), rec(dayOff, wednesday, nil)},
	}
	if d := engine.Validate(Proposal{Concept: dayOff, Date: wednesday.AddDate(0, 0, 1)}, two); d.Rule != RuleWeeklyDaysOff {
		t.Fatalf("expected third day off to be rejected, got %+v", d)
	}
}

func TestEngine_NilHoursInHistoryCountAsZero(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultLimits())
	snapshot := &Snapshot{Weekly: []*Record{rec(dayOff, wednesday, nil), rec(regular, wednesday, intPtr(8))}}

	if d := engine.Validate(Proposal{Concept: extra, Date: wednesday, WorkedHours: intPtr(6)}, snapshot); !d.Accepted() {
		t.Fatalf("expected acceptance, got %+v", d)
	}
}

func TestEngine_CustomLimits(t *testing.T) {
	t.Parallel()

	engine := NewEngine(Limits{WeeklyHours: 40})
	if engine.Limits().DailyHours != 14 {
		t.Fatalf("expected unset limits to fall back to defaults, got %+v", engine.Limits())
	}

	snapshot := &Snapshot{Weekly: []*Record{
		rec(openEnded, wednesday.AddDate(0, 0, -2), intPtr(14)),
		rec(openEnded, wednesday.AddDate(0, 0, -1), intPtr(14)),
		rec(openEnded, wednesday.AddDate(0, 0, 1), intPtr(8)),
	}}
	d := engine.Validate(Proposal{Concept: regular, Date: wednesday, WorkedHours: intPtr(6)}, snapshot)
	if d.Rule != RuleWeeklyHours || !strings.Contains(d.Reason, "40 horas") {
		t.Fatalf("expected custom weekly cap, got %+v", d)
	}
}

func TestDecision_Err(t *testing.T) {
	t.Parallel()

	err := DuplicateDecision().Err()
	violation, ok := err.(*RuleViolation)
	if !ok {
		t.Fatalf("expected *RuleViolation, got %T", err)
	}
	if violation.Rule != RuleDuplicateConcept {
		t.Fatalf("unexpected rule %s", violation.Rule)
	}
}

// monthlyHistory は合計 total 時間になる月内の記録を作ります。
func monthlyHistory(total int) []*Record {
	var records []*Record
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for total > 0 {
		h := 8
		if total < h {
			h = total
		}
		records = append(records, rec(openEnded, day, intPtr(h)))
		total -= h
		day = day.AddDate(0, 0, 1)
	}
	return records
}
