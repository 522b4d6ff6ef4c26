package xref

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/morozRed/pdfxref/internal/document"
)

// Cell is one entry of the matrix.
type Cell uint8

const (
	CellUnknown Cell = iota
	CellYes
	CellNo
	CellSelf
)

func cellOf(m document.Mention) Cell {
	switch m {
	case document.MentionYes:
		return CellYes
	case document.MentionNo:
		return CellNo
	default:
		return CellUnknown
	}
}

// Symbol is the one-character form used in text tables.
func (c Cell) Symbol() string {
	switch c {
	case CellYes:
		return "Y"
	case CellNo:
		return "N"
	case CellSelf:
		return "-"
	default:
		return "?"
	}
}

func (c Cell) String() string {
	switch c {
	case CellYes:
		return "yes"
	case CellNo:
		return "no"
	case CellSelf:
		return "self"
	default:
		return "unknown"
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Matrix is the N×N view of a catalog: Cells[i][j] tells whether document i
// mentions document j.
type Matrix struct {
	Names []string `json:"names"`
	Cells [][]Cell `json:"cells"`
	// Mentions counts the documents each document mentions.
	Mentions []int `json:"mentions"`
	// MentionedBy counts the documents mentioning each document.
	MentionedBy []int `json:"mentionedBy"`
}

func BuildMatrix(docs []*document.Document) *Matrix {
	m := &Matrix{
		Names:       make([]string, len(docs)),
		Cells:       make([][]Cell, len(docs)),
		Mentions:    make([]int, len(docs)),
		MentionedBy: make([]int, len(docs)),
	}
	for i, doc := range docs {
		m.Names[i] = doc.Name
		row := make([]Cell, len(docs))
		for j, other := range docs {
			if i == j {
				row[j] = CellSelf
				continue
			}
			row[j] = cellOf(doc.CrossRefs.Get(other.Name))
			if row[j] == CellYes {
				m.Mentions[i]++
				m.MentionedBy[j]++
			}
		}
		m.Cells[i] = row
	}
	return m
}

// Unknown counts off-diagonal cells that are still undetermined.
func (m *Matrix) Unknown() int {
	n := 0
	for _, row := range m.Cells {
		for _, cell := range row {
			if cell == CellUnknown {
				n++
			}
		}
	}
	return n
}

// Render writes the matrix as a text table. Columns are numbered after the row
// they refer to so wide catalogs stay readable.
func (m *Matrix) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	header := []string{"#", "document"}
	for j := range m.Names {
		header = append(header, fmt.Sprint(j+1))
	}
	header = append(header, "mentions", "mentioned by")
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}

	for i, name := range m.Names {
		row := []string{fmt.Sprint(i + 1), name}
		for _, cell := range m.Cells[i] {
			row = append(row, cell.Symbol())
		}
		row = append(row, fmt.Sprint(m.Mentions[i]), fmt.Sprint(m.MentionedBy[i]))
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
