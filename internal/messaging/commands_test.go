package messaging

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestCommandListener_EnqueueDrain(t *testing.T) {
	tests := map[string]struct {
		payloads [][]byte
		want     []Command
	}{
		"single command": {
			payloads: [][]byte{
				[]byte(`{"session":"s1","verb":"enter","node":"loc-1"}`),
			},
			want: []Command{
				{Session: "s1", Verb: "enter", Node: "loc-1"},
			},
		},
		"preserves order": {
			payloads: [][]byte{
				[]byte(`{"session":"s1","verb":"exit","node":"loc-1"}`),
				[]byte(`{"session":"s1","verb":"enter","node":"loc-2"}`),
				[]byte(`{"session":"s2","verb":"event","event":"ambush","scope":"area"}`),
			},
			want: []Command{
				{Session: "s1", Verb: "exit", Node: "loc-1"},
				{Session: "s1", Verb: "enter", Node: "loc-2"},
				{Session: "s2", Verb: "event", Event: "ambush", Scope: "area"},
			},
		},
		"drops malformed json": {
			payloads: [][]byte{
				[]byte(`{"session":"s1","verb":`),
				[]byte(`{"session":"s1","verb":"enter","node":"loc-1"}`),
			},
			want: []Command{
				{Session: "s1", Verb: "enter", Node: "loc-1"},
			},
		},
		"drops incomplete command": {
			payloads: [][]byte{
				[]byte(`{"session":"s1"}`),
				[]byte(`{"verb":"enter","node":"loc-1"}`),
			},
			want: []Command{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l := NewCommandListener(nil)
			for _, p := range tt.payloads {
				l.enqueue(p)
			}

			got := l.Drain()
			testutil.AssertEqual(t, "count", len(got), len(tt.want))
			for i := range tt.want {
				if i >= len(got) {
					break
				}
				testutil.AssertEqual(t, "command", got[i], tt.want[i])
			}
		})
	}
}

func TestCommandListener_DrainClears(t *testing.T) {
	l := NewCommandListener(nil)
	l.enqueue([]byte(`{"session":"s1","verb":"enter","node":"loc-1"}`))

	first := l.Drain()
	testutil.AssertEqual(t, "first drain", len(first), 1)

	second := l.Drain()
	testutil.AssertEqual(t, "second drain", len(second), 0)
}
