package export

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/sezerdalgic/podcastmafya/internal/model"
	"github.com/sezerdalgic/podcastmafya/internal/resolver"
)

type fakeResolver struct {
	samples map[string][]int16
	errs    map[string]error
	calls   []string
}

func (f *fakeResolver) ResolveSamples(ctx context.Context, ep *model.Episode, line *model.ScriptLine, char *model.Character) ([]int16, error) {
	f.calls = append(f.calls, line.ID)
	if err := f.errs[line.ID]; err != nil {
		return nil, err
	}
	return f.samples[line.ID], nil
}

func episode(lines ...model.ScriptLine) *model.Episode {
	return &model.Episode{ID: "ep1", Title: "Is AI Art Real Art?", Script: lines}
}

func withAudio(id string) model.ScriptLine {
	return model.ScriptLine{ID: id, AudioURL: "http://blob/" + id}
}

func withoutAudio(id string) model.ScriptLine {
	return model.ScriptLine{ID: id}
}

// --- Concatenation ---

func TestExportConcatenatesInScriptOrder(t *testing.T) {
	res := &fakeResolver{samples: map[string][]int16{
		"a": {1, 2},
		"c": {3, 4, 5},
	}}
	x := New(res)

	wav, name, err := x.Export(context.Background(), episode(withAudio("a"), withoutAudio("b"), withAudio("c")), nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	// lines without any source are skipped before resolution
	if len(res.calls) != 2 || res.calls[0] != "a" || res.calls[1] != "c" {
		t.Errorf("resolved lines = %v, want [a c]", res.calls)
	}

	// data chunk = 5 samples in index order
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != 10 {
		t.Errorf("data length = %d, want 10", got)
	}
	want := []int16{1, 2, 3, 4, 5}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(wav[44+i*2 : 46+i*2]))
		if got != w {
			t.Errorf("sample[%d] = %d, want %d", i, got, w)
		}
	}

	if name != "Is_AI_Art_Real_Art_.wav" {
		t.Errorf("filename = %q", name)
	}
}

func TestExportOmitsFailedLines(t *testing.T) {
	res := &fakeResolver{
		samples: map[string][]int16{"a": {1}, "c": {3}},
		errs:    map[string]error{"b": resolver.ErrTransfer},
	}
	x := New(res)

	wav, _, err := x.Export(context.Background(), episode(withAudio("a"), withAudio("b"), withAudio("c")), nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != 4 {
		t.Errorf("data length = %d, want 4 (b omitted)", got)
	}
}

func TestExportNoAudioAvailable(t *testing.T) {
	x := New(&fakeResolver{})
	_, _, err := x.Export(context.Background(), episode(withoutAudio("a"), withoutAudio("b")), nil)
	if !errors.Is(err, ErrNoAudioAvailable) {
		t.Errorf("Export = %v, want ErrNoAudioAvailable", err)
	}
}

func TestExportAllLinesFailing(t *testing.T) {
	res := &fakeResolver{errs: map[string]error{"a": resolver.ErrTransfer}}
	x := New(res)
	_, _, err := x.Export(context.Background(), episode(withAudio("a")), nil)
	if !errors.Is(err, ErrNoAudioAvailable) {
		t.Errorf("Export = %v, want ErrNoAudioAvailable", err)
	}
}

// --- Filename sanitization ---

func TestFilename(t *testing.T) {
	cases := []struct {
		title, want string
	}{
		{"Hello World", "Hello_World.wav"},
		{"AI & the Future!!", "AI___the_Future__.wav"},
		{"", "episode.wav"},
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.wav"},
	}
	for _, tc := range cases {
		if got := Filename(tc.title); got != tc.want {
			t.Errorf("Filename(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}
