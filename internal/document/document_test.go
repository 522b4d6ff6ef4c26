package document

import (
	"context"
	"errors"
	"testing"

	"github.com/morozRed/pdfxref/internal/tools"
	"github.com/morozRed/pdfxref/internal/tools/toolstest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultParser = Parser{Extension: ".pdf", NonFreeMarker: "nonfree", Century: 2000}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     Identity
	}{
		{"SM19_ABC_FooProtocol.pdf", Identity{Name: "FooProtocol", Author: "SM", Year: 2019, Free: true}},
		{"SM19_FooProtocol.pdf", Identity{Name: "FooProtocol", Author: "SM", Year: 2019, Free: true}},
		{"SM19_nonfree_FooProtocol.pdf", Identity{Name: "FooProtocol", Author: "SM", Year: 2019, Free: false}},
		{"NIST05_SP800-82_ICS-Security.pdf", Identity{Name: "ICS-Security", Author: "NIST", Year: 2005, Free: true}},
		{"X00_Zero.pdf", Identity{Name: "Zero", Author: "X", Year: 2000, Free: true}},
		// Only the extension suffix is stripped, not any trailing p/d/f letters.
		{"AB21_Pdf.pdf", Identity{Name: "Pdf", Author: "AB", Year: 2021, Free: true}},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := defaultParser.ParseFilename(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilenameCentury(t *testing.T) {
	p := defaultParser
	p.Century = 1900
	got, err := p.ParseFilename("RFC98_TCP.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1998, got.Year)
}

func TestParseFilenameErrors(t *testing.T) {
	for _, filename := range []string{
		".pdf",
		"SM19.pdf",
		"S9_Foo.pdf",
		"SMxx_Foo.pdf",
		"SM1a_Foo.pdf",
		"SM19_.pdf",
		"Ren\xe919_ABC_Foo.pdf",
	} {
		t.Run(filename, func(t *testing.T) {
			_, err := defaultParser.ParseFilename(filename)
			require.Error(t, err)
			var formatErr *FilenameFormatError
			require.True(t, errors.As(err, &formatErr))
			assert.Equal(t, filename, formatErr.Filename)
		})
	}
}

func TestNewQueriesPageCount(t *testing.T) {
	fake := toolstest.New()
	fake.Pages["SM19_ABC_FooProtocol.pdf"] = 12

	doc, err := defaultParser.New(context.Background(), "/docs", "SM19_ABC_FooProtocol.pdf", fake)
	require.NoError(t, err)
	assert.Equal(t, "/docs", doc.Dir)
	assert.Equal(t, "/docs/SM19_ABC_FooProtocol.pdf", doc.Path)
	assert.Equal(t, "FooProtocol", doc.Name)
	assert.Equal(t, "SM", doc.Author)
	assert.Equal(t, 2019, doc.Year)
	assert.Equal(t, 12, doc.Pages)
	assert.True(t, doc.Free)
	assert.Len(t, doc.Missing(), len(doc.Fields()))
	assert.Zero(t, doc.CrossRefs.Len())
}

func TestNewPageCountFailure(t *testing.T) {
	fake := toolstest.New()
	fake.Fail["SM19_Foo.pdf"] = true

	_, err := defaultParser.New(context.Background(), "/docs", "SM19_Foo.pdf", fake)
	require.Error(t, err)
	assert.True(t, tools.IsInvocationError(err))
}

func TestNewRejectsBadFilenameBeforeToolRuns(t *testing.T) {
	fake := toolstest.New()
	_, err := defaultParser.New(context.Background(), "/docs", "Foo.pdf", fake)
	require.Error(t, err)
	assert.Empty(t, fake.PageCalls)
}

func TestSearchTerm(t *testing.T) {
	doc := &Document{Name: "FooProtocol"}
	assert.Equal(t, "FooProtocol", doc.SearchTerm())

	doc.SearchName = Bool(true)
	assert.Equal(t, "FooProtocol", doc.SearchTerm())

	doc.SearchName = Text("Foo Protocol")
	assert.Equal(t, "Foo Protocol", doc.SearchTerm())
}

func TestParseAnswer(t *testing.T) {
	assert.Equal(t, Unset(), ParseAnswer(""))
	assert.Equal(t, Bool(true), ParseAnswer("y"))
	assert.Equal(t, Bool(true), ParseAnswer("Y"))
	assert.Equal(t, Bool(false), ParseAnswer("n"))
	assert.Equal(t, Bool(false), ParseAnswer("N"))
	assert.Equal(t, Text("yes"), ParseAnswer("yes"))
	assert.Equal(t, Text("industrial control"), ParseAnswer("industrial control"))
}

func TestCrossRefsOrderAndOverwrite(t *testing.T) {
	var refs CrossRefs
	assert.Equal(t, MentionUnknown, refs.Get("Missing"))

	refs.Set("B", MentionYes)
	refs.Set("A", MentionNo)
	refs.Set("B", MentionNo)

	assert.Equal(t, []string{"B", "A"}, refs.Keys())
	assert.Equal(t, MentionNo, refs.Get("B"))
	assert.True(t, refs.Has("A"))
	assert.False(t, refs.Has("C"))
}

type scriptedAsker struct {
	responses []string
	labels    []string
}

func (s *scriptedAsker) Ask(label string) (string, error) {
	s.labels = append(s.labels, label)
	if len(s.responses) == 0 {
		return "", errors.New("input closed")
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r, nil
}

func TestCompleteNormalizesResponses(t *testing.T) {
	doc := &Document{Filename: "SM19_Foo.pdf", Name: "Foo"}
	asker := &scriptedAsker{responses: []string{"y", "N", "ICS networks", "", "n", "Y", "n", "Foo Proto"}}

	require.NoError(t, doc.Complete(asker, zerolog.Nop()))

	assert.Equal(t, Bool(true), doc.Norm)
	assert.Equal(t, Bool(false), doc.StepByStep)
	assert.Equal(t, Text("ICS networks"), doc.Scope)
	assert.Equal(t, Unset(), doc.TargetedIndustry)
	assert.Equal(t, Bool(false), doc.ProtocolSpecific)
	assert.Equal(t, Bool(true), doc.IndusAuthors)
	assert.Equal(t, Bool(false), doc.GovAuthors)
	assert.Equal(t, Text("Foo Proto"), doc.SearchName)
	assert.Equal(t, []string{"targetedIndustry"}, doc.Missing())
}

func TestCompleteOnlyAsksForUnsetFields(t *testing.T) {
	doc := &Document{Filename: "SM19_Foo.pdf", Name: "Foo"}
	for _, field := range doc.Fields() {
		*field.Value = Bool(false)
	}
	doc.Scope = Unset()

	asker := &scriptedAsker{responses: []string{"wide"}}
	require.NoError(t, doc.Complete(asker, zerolog.Nop()))

	require.Len(t, asker.labels, 1)
	assert.Contains(t, asker.labels[0], "scope")
	assert.Equal(t, Text("wide"), doc.Scope)

	// A second pass has nothing left to ask.
	require.NoError(t, doc.Complete(asker, zerolog.Nop()))
	assert.Len(t, asker.labels, 1)
}

func TestCompleteStopsWhenInputCloses(t *testing.T) {
	doc := &Document{Filename: "SM19_Foo.pdf", Name: "Foo"}
	err := doc.Complete(&scriptedAsker{responses: []string{"y"}}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SM19_Foo.pdf")
	assert.Equal(t, Bool(true), doc.Norm)
}
