package identity

import "testing"

func TestBroadcaster_AnonymousByDefault(t *testing.T) {
	b := NewBroadcaster()
	owner, ok := b.CurrentOwner()
	if ok || owner != "" {
		t.Fatalf("expected anonymous start, got %q ok=%v", owner, ok)
	}
}

func TestBroadcaster_SignInNotifies(t *testing.T) {
	b := NewBroadcaster()
	calls := 0
	b.OnChange(func() { calls++ })

	b.SignIn("user-1")

	owner, ok := b.CurrentOwner()
	if !ok || owner != "user-1" {
		t.Fatalf("expected user-1, got %q ok=%v", owner, ok)
	}
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}
}

func TestBroadcaster_RepeatSignInIsNoop(t *testing.T) {
	b := NewBroadcaster()
	calls := 0
	b.OnChange(func() { calls++ })

	b.SignIn("user-1")
	b.SignIn("user-1")

	if calls != 1 {
		t.Fatalf("expected 1 notification for repeated sign-in, got %d", calls)
	}
}

func TestBroadcaster_SignOut(t *testing.T) {
	b := NewBroadcaster()
	b.SignIn("user-1")

	calls := 0
	b.OnChange(func() { calls++ })
	b.SignOut()

	if _, ok := b.CurrentOwner(); ok {
		t.Fatal("expected anonymous after sign-out")
	}
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster()
	calls := 0
	unsub := b.OnChange(func() { calls++ })

	unsub()
	b.SignIn("user-1")

	if calls != 0 {
		t.Fatalf("expected no notifications after unsubscribe, got %d", calls)
	}
}
