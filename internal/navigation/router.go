// Package navigation models the app shell's views as a finite-state router.
package navigation

import (
	"errors"
	"fmt"
)

// View is a screen of the app shell.
type View string

const (
	ViewLanding  View = "landing"
	ViewLogin    View = "login"
	ViewRegister View = "register"
	ViewHome     View = "home"
	ViewScanner  View = "scanner"
	ViewWallet   View = "wallet"
	ViewHistory  View = "history"
)

// ErrInvalidTransition is returned for moves the router does not allow.
var ErrInvalidTransition = errors.New("invalid navigation")

// Event is what caused a transition.
type Event string

const (
	EventNavigate Event = "navigate"
	EventLogin    Event = "login"
	EventLogout   Event = "logout"
)

var guestViews = map[View][]View{
	ViewLanding:  {ViewLogin, ViewRegister},
	ViewLogin:    {ViewLanding, ViewRegister},
	ViewRegister: {ViewLanding, ViewLogin},
}

var memberViews = []View{ViewHome, ViewScanner, ViewWallet, ViewHistory}

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	v := View(s)
	if _, ok := guestViews[v]; ok {
		return v, nil
	}
	if IsMemberView(v) {
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown view %q", ErrInvalidTransition, s)
}

// IsMemberView reports whether the view requires an authenticated member.
func IsMemberView(v View) bool {
	for _, m := range memberViews {
		if m == v {
			return true
		}
	}
	return false
}

// Next returns the view reached from `from` by `event`. For EventNavigate the
// target is `to`; login always lands on home and logout on landing.
func Next(from View, event Event, to View) (View, error) {
	switch event {
	case EventLogin:
		if _, ok := guestViews[from]; !ok {
			return "", fmt.Errorf("%w: already signed in", ErrInvalidTransition)
		}
		return ViewHome, nil
	case EventLogout:
		if !IsMemberView(from) {
			return "", fmt.Errorf("%w: not signed in", ErrInvalidTransition)
		}
		return ViewLanding, nil
	case EventNavigate:
		if allowed, ok := guestViews[from]; ok {
			for _, v := range allowed {
				if v == to {
					return to, nil
				}
			}
			return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		if IsMemberView(from) && IsMemberView(to) {
			return to, nil
		}
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	default:
		return "", fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, event)
	}
}

// HoldsCamera reports whether a member on v may keep a camera stream open.
// Every other view releases it.
func HoldsCamera(v View) bool {
	return v == ViewScanner
}
