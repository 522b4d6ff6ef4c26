package xref

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/morozRed/pdfxref/internal/document"
	"github.com/morozRed/pdfxref/internal/tools"
	"github.com/morozRed/pdfxref/internal/tools/toolstest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc(t *testing.T, filename, name string) *document.Document {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))
	return &document.Document{Dir: dir, Filename: filename, Path: path, Name: name}
}

type fakePrompter struct {
	asks     []string
	confirms []bool
	shown    []string
	labels   []string
}

func (p *fakePrompter) Ask(label string) (string, error) {
	p.labels = append(p.labels, label)
	if len(p.asks) == 0 {
		return "", errors.New("no more answers")
	}
	answer := p.asks[0]
	p.asks = p.asks[1:]
	return answer, nil
}

func (p *fakePrompter) Confirm(label string) (bool, error) {
	p.labels = append(p.labels, label)
	if len(p.confirms) == 0 {
		return false, errors.New("no more confirmations")
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

func (p *fakePrompter) Show(text string) {
	p.shown = append(p.shown, text)
}

func TestComputeAllIsDirectional(t *testing.T) {
	a := newDoc(t, "SM19_A.pdf", "Alpha")
	b := newDoc(t, "SM19_B.pdf", "Beta")
	fake := toolstest.New()
	fake.Texts["SM19_A.pdf"] = "intro\nsee Beta for details\n"
	fake.Texts["SM19_B.pdf"] = "nothing relevant\n"

	stats, err := NewEngine(fake, nil, Options{}, zerolog.Nop()).ComputeAll(context.Background(), []*document.Document{a, b})
	require.NoError(t, err)

	assert.Equal(t, document.MentionYes, a.CrossRefs.Get("Beta"))
	assert.Equal(t, document.MentionNo, b.CrossRefs.Get("Alpha"))
	assert.False(t, a.CrossRefs.Has("Alpha"), "a document is never checked against itself")
	assert.False(t, b.CrossRefs.Has("Beta"))
	assert.Equal(t, Stats{Pairs: 2, Found: 1}, stats)
	assert.Equal(t, []toolstest.SearchCall{
		{Pattern: "Beta", File: "SM19_A.pdf"},
		{Pattern: "Alpha", File: "SM19_B.pdf"},
	}, fake.SearchCalls)
}

func TestComputeAllUsesSearchAlias(t *testing.T) {
	a := newDoc(t, "SM19_A.pdf", "Alpha")
	b := newDoc(t, "SM19_B.pdf", "FooProtocol")
	b.SearchName = document.Text("Foo Protocol")
	fake := toolstest.New()
	fake.Texts["SM19_A.pdf"] = "the Foo Protocol standard\n"

	_, err := NewEngine(fake, nil, Options{}, zerolog.Nop()).ComputeAll(context.Background(), []*document.Document{a, b})
	require.NoError(t, err)

	assert.Equal(t, document.MentionYes, a.CrossRefs.Get("FooProtocol"))
	assert.Equal(t, "Foo Protocol", fake.SearchCalls[0].Pattern)
}

func TestComputeAllSingleDocument(t *testing.T) {
	a := newDoc(t, "SM19_A.pdf", "Alpha")
	fake := toolstest.New()
	stats, err := NewEngine(fake, nil, Options{}, zerolog.Nop()).ComputeAll(context.Background(), []*document.Document{a})
	require.NoError(t, err)
	assert.Zero(t, stats.Pairs)
	assert.Empty(t, fake.SearchCalls)
	assert.Zero(t, a.CrossRefs.Len())
}

func TestUpdateInteractiveConfirmationOverrides(t *testing.T) {
	doc := newDoc(t, "SM19_A.pdf", "Alpha")
	fake := toolstest.New()
	fake.Texts["SM19_A.pdf"] = "Beta is mentioned\n"
	prompter := &fakePrompter{asks: []string{""}, confirms: []bool{false}}

	engine := NewEngine(fake, prompter, Options{Interactive: true}, zerolog.Nop())
	require.NoError(t, engine.Update(context.Background(), doc, "Beta", "Beta"))

	assert.Equal(t, document.MentionNo, doc.CrossRefs.Get("Beta"))
	assert.Equal(t, []string{"Beta is mentioned\n"}, prompter.shown)
}

func TestUpdateInteractiveReplacedSearchKeepsKey(t *testing.T) {
	doc := newDoc(t, "SM19_A.pdf", "Alpha")
	fake := toolstest.New()
	fake.Texts["SM19_A.pdf"] = "see the B protocol\n"
	prompter := &fakePrompter{asks: []string{"B protocol"}, confirms: []bool{true}}

	engine := NewEngine(fake, prompter, Options{Interactive: true}, zerolog.Nop())
	require.NoError(t, engine.Update(context.Background(), doc, "Beta", "Beta"))

	assert.Equal(t, document.MentionYes, doc.CrossRefs.Get("Beta"))
	assert.False(t, doc.CrossRefs.Has("B protocol"))
	assert.Equal(t, "B protocol", fake.SearchCalls[0].Pattern)
}

func TestUpdateInteractiveNoOccurrencesDoesNotConfirm(t *testing.T) {
	doc := newDoc(t, "SM19_A.pdf", "Alpha")
	prompter := &fakePrompter{asks: []string{""}}

	engine := NewEngine(toolstest.New(), prompter, Options{Interactive: true}, zerolog.Nop())
	require.NoError(t, engine.Update(context.Background(), doc, "Beta", "Beta"))

	assert.Equal(t, document.MentionNo, doc.CrossRefs.Get("Beta"))
	assert.Len(t, prompter.labels, 1)
	assert.Empty(t, prompter.shown)
}

func TestUpdateSearchFailureLeavesEntry(t *testing.T) {
	doc := newDoc(t, "SM19_A.pdf", "Alpha")
	doc.CrossRefs.Set("Beta", document.MentionYes)
	fake := toolstest.New()
	fake.Fail["SM19_A.pdf"] = true

	err := NewEngine(fake, nil, Options{}, zerolog.Nop()).Update(context.Background(), doc, "Beta", "Beta")
	require.Error(t, err)
	assert.True(t, tools.IsInvocationError(err))
	assert.Contains(t, err.Error(), "SM19_A.pdf")
	assert.Equal(t, document.MentionYes, doc.CrossRefs.Get("Beta"))
}

func TestComputeAllOnlyMissingSkipsDecidedPairs(t *testing.T) {
	a := newDoc(t, "SM19_A.pdf", "Alpha")
	b := newDoc(t, "SM19_B.pdf", "Beta")
	a.CrossRefs.Set("Beta", document.MentionNo)
	b.CrossRefs.Set("Alpha", document.MentionUnknown)
	fake := toolstest.New()
	fake.Texts["SM19_A.pdf"] = "Beta\n"
	fake.Texts["SM19_B.pdf"] = "Alpha\n"

	stats, err := NewEngine(fake, nil, Options{OnlyMissing: true}, zerolog.Nop()).
		ComputeAll(context.Background(), []*document.Document{a, b})
	require.NoError(t, err)

	assert.Equal(t, document.MentionNo, a.CrossRefs.Get("Beta"))
	assert.Equal(t, document.MentionYes, b.CrossRefs.Get("Alpha"))
	assert.Equal(t, Stats{Pairs: 2, Found: 1, Skipped: 1}, stats)
	assert.Equal(t, []toolstest.SearchCall{{Pattern: "Alpha", File: "SM19_B.pdf"}}, fake.SearchCalls)
}

func TestComputeAllRecomputesByDefault(t *testing.T) {
	a := newDoc(t, "SM19_A.pdf", "Alpha")
	b := newDoc(t, "SM19_B.pdf", "Beta")
	a.CrossRefs.Set("Beta", document.MentionNo)
	fake := toolstest.New()
	fake.Texts["SM19_A.pdf"] = "Beta\n"

	_, err := NewEngine(fake, nil, Options{}, zerolog.Nop()).ComputeAll(context.Background(), []*document.Document{a, b})
	require.NoError(t, err)
	assert.Equal(t, document.MentionYes, a.CrossRefs.Get("Beta"))
}

func TestComputeAllFailureHandling(t *testing.T) {
	setup := func() ([]*document.Document, *toolstest.Fake) {
		fake := toolstest.New()
		fake.Fail["SM19_A.pdf"] = true
		fake.Texts["SM19_B.pdf"] = "Alpha\n"
		return []*document.Document{newDoc(t, "SM19_A.pdf", "Alpha"), newDoc(t, "SM19_B.pdf", "Beta")}, fake
	}

	t.Run("abort", func(t *testing.T) {
		docs, fake := setup()
		_, err := NewEngine(fake, nil, Options{}, zerolog.Nop()).ComputeAll(context.Background(), docs)
		require.Error(t, err)
		assert.True(t, tools.IsInvocationError(err))
	})

	t.Run("skip failed", func(t *testing.T) {
		docs, fake := setup()
		stats, err := NewEngine(fake, nil, Options{SkipFailed: true}, zerolog.Nop()).ComputeAll(context.Background(), docs)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)
		assert.False(t, docs[0].CrossRefs.Has("Beta"))
		assert.Equal(t, document.MentionYes, docs[1].CrossRefs.Get("Alpha"))
	})
}

func TestComputeAllSkipsDocumentsWhoseFileIsGone(t *testing.T) {
	a := newDoc(t, "SM19_A.pdf", "Alpha")
	b := newDoc(t, "SM19_B.pdf", "Beta")
	a.CrossRefs.Set("Beta", document.MentionYes)
	require.NoError(t, os.Remove(a.Path))
	fake := toolstest.New()
	fake.Fail["SM19_A.pdf"] = true
	fake.Texts["SM19_B.pdf"] = "Alpha\n"

	stats, err := NewEngine(fake, nil, Options{}, zerolog.Nop()).ComputeAll(context.Background(), []*document.Document{a, b})
	require.NoError(t, err)

	assert.Equal(t, Stats{Pairs: 2, Found: 1, Skipped: 1}, stats)
	assert.Equal(t, document.MentionYes, a.CrossRefs.Get("Beta"), "cached value is kept")
	assert.Equal(t, document.MentionYes, b.CrossRefs.Get("Alpha"), "a gone file can still be mentioned")
	assert.Equal(t, []toolstest.SearchCall{{Pattern: "Alpha", File: "SM19_B.pdf"}}, fake.SearchCalls)
}

func TestComputeAllInteractiveNeedsPrompter(t *testing.T) {
	_, err := NewEngine(toolstest.New(), nil, Options{Interactive: true}, zerolog.Nop()).
		ComputeAll(context.Background(), []*document.Document{newDoc(t, "SM19_A.pdf", "A")})
	require.Error(t, err)
}

func TestComputeAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	docs := []*document.Document{newDoc(t, "SM19_A.pdf", "A"), newDoc(t, "SM19_B.pdf", "B")}
	_, err := NewEngine(toolstest.New(), nil, Options{}, zerolog.Nop()).ComputeAll(ctx, docs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeAllReportsProgress(t *testing.T) {
	docs := []*document.Document{newDoc(t, "SM19_A.pdf", "A"), newDoc(t, "SM19_B.pdf", "B"), newDoc(t, "SM19_C.pdf", "C")}
	engine := NewEngine(toolstest.New(), nil, Options{}, zerolog.Nop())
	var last, total int
	engine.Progress = func(done, n int) {
		last, total = done, n
	}
	_, err := engine.ComputeAll(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 6, last)
	assert.Equal(t, 6, total)
}

func TestBuildMatrix(t *testing.T) {
	a := newDoc(t, "SM19_A.pdf", "Alpha")
	b := newDoc(t, "SM19_B.pdf", "Beta")
	c := newDoc(t, "SM19_C.pdf", "Gamma")
	a.CrossRefs.Set("Beta", document.MentionYes)
	a.CrossRefs.Set("Gamma", document.MentionNo)
	c.CrossRefs.Set("Beta", document.MentionYes)

	m := BuildMatrix([]*document.Document{a, b, c})
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, m.Names)
	assert.Equal(t, [][]Cell{
		{CellSelf, CellYes, CellNo},
		{CellUnknown, CellSelf, CellUnknown},
		{CellUnknown, CellYes, CellSelf},
	}, m.Cells)
	assert.Equal(t, []int{1, 0, 1}, m.Mentions)
	assert.Equal(t, []int{0, 2, 0}, m.MentionedBy)
	assert.Equal(t, 3, m.Unknown())

	var out bytes.Buffer
	require.NoError(t, m.Render(&out))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"#", "document", "1", "2", "3", "mentions", "mentioned", "by"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "Alpha", "-", "Y", "N", "1", "0"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "Beta", "?", "-", "?", "0", "2"}, strings.Fields(lines[2]))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cells":[["self","yes","no"],["unknown","self","unknown"],["unknown","yes","self"]]`)
}
