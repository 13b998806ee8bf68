package skills

import (
	"bytes"
	"context"
	"io"

	"github.com/constella-app/constella-web/internal/ui/types"
	"golang.org/x/sync/errgroup"
)

// Extractor is the remote CV extraction service (implemented by client.Client)
type Extractor interface {
	ExtractSkills(ctx context.Context, filename string, content io.Reader) (*types.ExtractionResponse, error)
}

// Document is an uploaded CV held in memory
type Document struct {
	Name string
	Data []byte
}

// Extraction is the outcome of both extraction sources.
// A failure of one source does not discard the result of the other.
type Extraction struct {
	Remote    *types.ExtractionResponse
	RemoteErr error
	Keywords  []string
	LocalErr  error
}

// Extract sends the document to the remote extractor while scanning its text for dictionary keywords.
// A nil extractor skips the remote call. The returned error is only set when ctx ends first.
func Extract(ctx context.Context, extractor Extractor, doc Document) (*Extraction, error) {
	var result Extraction

	g, gctx := errgroup.WithContext(ctx)

	if extractor != nil {
		g.Go(func() error {
			result.Remote, result.RemoteErr = extractor.ExtractSkills(gctx, doc.Name, bytes.NewReader(doc.Data))
			return nil
		})
	}

	g.Go(func() error {
		text, err := DocumentText(gctx, doc.Name, doc.Data)
		if err != nil {
			result.LocalErr = err
			return nil
		}
		result.Keywords = MatchKeywords(text)
		return nil
	})

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &result, nil
}

// Set returns the skills found by both sources: the remote summary by category and the keywords as hard skills.
// The flat remote skill list is used when the summary is empty.
func (e *Extraction) Set() Set {
	var s Set
	if e.Remote != nil {
		s.MergeSummary(e.Remote.Summary)
		if s.Len() == 0 {
			for _, skill := range e.Remote.Skills {
				s.Add(Hard, skill)
			}
		}
	}
	for _, keyword := range e.Keywords {
		s.Add(Hard, keyword)
	}
	return s
}
