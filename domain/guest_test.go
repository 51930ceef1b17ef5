package domain

import (
	"reflect"
	"testing"
)

func TestGuestState(t *testing.T) {
	t.Run("should fall back to the stored choice when event columns are empty", func(t *testing.T) {
		g := &Guest{AttendanceChoice: ChoiceLunch}
		want := AttendanceState{Ceremony: AttendanceNo, Lunch: AttendanceYes}
		if got := g.State(); got != want {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
	})

	t.Run("should return unknown for a nil guest", func(t *testing.T) {
		var g *Guest
		if got := DeriveAttendanceState(g.Record()); got != (AttendanceState{}) {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", AttendanceState{}, got)
		}
	})
}

func TestApplyAttendance(t *testing.T) {
	t.Run("should sync legacy fields for a ceremony-only answer", func(t *testing.T) {
		g := &Guest{}
		ApplyAttendance(g, AttendanceYes, AttendanceNo)

		if g.Attending != AttendanceYes {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", AttendanceYes, g.Attending)
		}
		if g.AttendanceChoice != ChoiceCeremony {
			t.Fatalf("\nwanted:\n%q\ngot:\n%q", ChoiceCeremony, g.AttendanceChoice)
		}
	})

	t.Run("should clear legacy fields when the answer is withdrawn", func(t *testing.T) {
		g := &Guest{Attending: AttendanceNo, AttendanceChoice: ChoiceDecline}
		ApplyAttendance(g, AttendanceUnknown, AttendanceUnknown)

		if g.Attending != AttendanceUnknown || g.AttendanceChoice != "" {
			t.Fatalf("wanted legacy fields to be cleared\ngot: %v %q", g.Attending, g.AttendanceChoice)
		}
	})

	t.Run("should count a legacy yes for both events", func(t *testing.T) {
		g := &Guest{}
		ApplyLegacyAttending(g, AttendanceYes)

		want := AttendanceState{Ceremony: AttendanceYes, Lunch: AttendanceYes}
		if got := g.State(); got != want {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
	})
}

func TestApplyAnswer(t *testing.T) {
	t.Run("should keep the event the answer leaves out", func(t *testing.T) {
		g := &Guest{}
		ApplyAttendance(g, AttendanceYes, AttendanceYes)

		answered := ApplyAnswer(g, AttendanceAnswer{Ceremony: AttendanceNo, HasCeremony: true})
		if !answered {
			t.Fatalf("\nwanted:\ntrue\ngot:\nfalse")
		}
		want := AttendanceState{Ceremony: AttendanceNo, Lunch: AttendanceYes}
		if got := g.State(); got != want {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
		if g.AttendanceChoice != ChoiceLunch {
			t.Fatalf("\nwanted:\n%q\ngot:\n%q", ChoiceLunch, g.AttendanceChoice)
		}
	})

	t.Run("should leave the guest alone for an empty answer", func(t *testing.T) {
		g := &Guest{}
		ApplyAttendance(g, AttendanceYes, AttendanceNo)

		if ApplyAnswer(g, AttendanceAnswer{}) {
			t.Fatalf("\nwanted:\nfalse\ngot:\ntrue")
		}
		want := AttendanceState{Ceremony: AttendanceYes, Lunch: AttendanceNo}
		if got := g.State(); got != want {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
	})

	t.Run("should apply a legacy answer to both events", func(t *testing.T) {
		g := &Guest{}
		ApplyAnswer(g, LegacyAnswer(AttendanceNo))

		if !g.State().Declined() {
			t.Fatalf("wanted both events declined\ngot: %+v", g.State())
		}
	})
}

func TestComputeStats(t *testing.T) {
	guests := []*Guest{
		{AttendCeremony: AttendanceYes, AttendLunch: AttendanceYes},
		{AttendCeremony: AttendanceNo, AttendLunch: AttendanceYes},
		{AttendCeremony: AttendanceNo, AttendLunch: AttendanceNo},
		{AttendanceChoice: ChoiceCeremony},
		{Attending: AttendanceNo},
		{},
	}

	want := RSVPStats{
		TotalGuests: 6,
		Confirmed:   3,
		Declined:    2,
		Pending:     1,
		Ceremony:    2,
		Lunch:       2,
	}
	if got := ComputeStats(guests); got != want {
		t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
	}
}

func TestNormalizeAllergens(t *testing.T) {
	t.Run("should drop unknown values and keep catalogue order", func(t *testing.T) {
		got := NormalizeAllergens([]string{" Sesamo", "glutine", "pizza", "glutine"})
		want := []string{"glutine", "sesamo"}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should return an empty slice for nil", func(t *testing.T) {
		got := NormalizeAllergens(nil)
		if got == nil || len(got) != 0 {
			t.Fatalf("wanted empty non-nil slice\ngot: %#v", got)
		}
	})
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, perPage         int
		wantPage, wantPerPage int
	}{
		{0, 0, 1, DefaultPerPage},
		{-3, 500, 1, MaxPerPage},
		{4, 10, 4, 10},
	}
	for _, tt := range tests {
		page, perPage := ClampPage(tt.page, tt.perPage)
		if page != tt.wantPage || perPage != tt.wantPerPage {
			t.Errorf("ClampPage(%d, %d)\nwanted:\n%d %d\ngot:\n%d %d", tt.page, tt.perPage, tt.wantPage, tt.wantPerPage, page, perPage)
		}
	}

	if got := TotalPages(0, 20); got != 1 {
		t.Errorf("TotalPages(0, 20)\nwanted:\n1\ngot:\n%d", got)
	}
	if got := TotalPages(41, 20); got != 3 {
		t.Errorf("TotalPages(41, 20)\nwanted:\n3\ngot:\n%d", got)
	}
}
