package narrative

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestExpandHint(t *testing.T) {
	tests := map[string]struct {
		tmpl    string
		data    HintData
		want    string
		wantErr bool
	}{
		"plain text passes through": {
			tmpl: "a cold wind blows",
			want: "a cold wind blows",
		},
		"expands name": {
			tmpl: "{{ .Name }} stirs",
			data: HintData{Name: "The Warden"},
			want: "The Warden stirs",
		},
		"expands state": {
			tmpl: "rumors of {{ .State.rumor_topic }} spread",
			data: HintData{State: map[string]any{"rumor_topic": "the siege"}},
			want: "rumors of the siege spread",
		},
		"sprig functions": {
			tmpl: "{{ .Name | upper }} (round {{ .Round }})",
			data: HintData{Name: "warden", Round: 3},
			want: "WARDEN (round 3)",
		},
		"parse error": {
			tmpl:    "{{ .Name",
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ExpandHint(tt.tmpl, tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "expanded", got, tt.want)
		})
	}
}
