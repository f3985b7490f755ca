// SPDX-License-Identifier: MPL-2.0

package exports

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want UnitKind
	}{
		{
			name: "fully concrete unit",
			src:  `exports: {motd: "hello"}`,
			want: UnitValue,
		},
		{
			name: "open field but readable exports",
			src:  `hostname: string, exports: {motd: "hello"}`,
			want: UnitSelfDescribing,
		},
		{
			name: "needs context and declares nothing readable",
			src:  `hostname: string, greeting: "hi \(hostname)"`,
			want: UnitDeferred,
		},
		{
			name: "exports present but not a struct",
			src:  `exports: string`,
			want: UnitDeferred,
		},
	}

	ctx := cuecontext.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := ctx.CompileString(tt.src)
			if v.Err() != nil {
				t.Fatalf("compile: %v", v.Err())
			}
			if got := Classify(v); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnitKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind UnitKind
		want string
	}{
		{UnitValue, "value"},
		{UnitDeferred, "deferred"},
		{UnitSelfDescribing, "self-describing"},
		{UnitKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("UnitKind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
