package navigation

import (
	"errors"
	"testing"
)

func TestNext(t *testing.T) {
	cases := []struct {
		from    View
		event   Event
		to      View
		want    View
		wantErr bool
	}{
		{from: ViewLanding, event: EventNavigate, to: ViewLogin, want: ViewLogin},
		{from: ViewLogin, event: EventNavigate, to: ViewRegister, want: ViewRegister},
		{from: ViewRegister, event: EventNavigate, to: ViewLanding, want: ViewLanding},
		{from: ViewLanding, event: EventNavigate, to: ViewWallet, wantErr: true},
		{from: ViewLogin, event: EventLogin, want: ViewHome},
		{from: ViewRegister, event: EventLogin, want: ViewHome},
		{from: ViewHome, event: EventLogin, wantErr: true},
		{from: ViewHome, event: EventNavigate, to: ViewScanner, want: ViewScanner},
		{from: ViewScanner, event: EventNavigate, to: ViewWallet, want: ViewWallet},
		{from: ViewWallet, event: EventNavigate, to: ViewHistory, want: ViewHistory},
		{from: ViewHistory, event: EventNavigate, to: ViewHome, want: ViewHome},
		{from: ViewHome, event: EventNavigate, to: ViewLogin, wantErr: true},
		{from: ViewWallet, event: EventLogout, want: ViewLanding},
		{from: ViewLanding, event: EventLogout, wantErr: true},
		{from: ViewHome, event: Event("teleport"), wantErr: true},
	}
	for _, tc := range cases {
		got, err := Next(tc.from, tc.event, tc.to)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Next(%s,%s,%s) err = %v, want ErrInvalidTransition", tc.from, tc.event, tc.to, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("Next(%s,%s,%s) = %s, %v; want %s", tc.from, tc.event, tc.to, got, err, tc.want)
		}
	}
}

func TestParseView(t *testing.T) {
	if v, err := ParseView("wallet"); err != nil || v != ViewWallet {
		t.Errorf("ParseView(wallet) = %s, %v", v, err)
	}
	if _, err := ParseView("settings"); err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestHoldsCamera(t *testing.T) {
	if !HoldsCamera(ViewScanner) {
		t.Error("scanner should hold the camera")
	}
	for _, v := range []View{ViewHome, ViewWallet, ViewHistory, ViewLanding} {
		if HoldsCamera(v) {
			t.Errorf("%s should not hold the camera", v)
		}
	}
}
