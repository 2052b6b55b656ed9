package export

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tobsdb/tabq/internal/query"
	"github.com/tobsdb/tabq/pkg"
)

const CSV_CONTENT_TYPE = "text/csv; charset=utf-8"

type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// ArtifactWriter delivers a finished artifact somewhere.
type ArtifactWriter interface {
	WriteArtifact(ctx context.Context, a Artifact) error
}

// BuildCSV serializes records into a CSV artifact named after title. The
// header row uses the column labels.
func BuildCSV[R any](title string, records []R, columns query.Columns, get query.Accessor[R], opts CSVOptions) (Artifact, error) {
	data, err := CSV(columns.Labels(), Cells(records, columns, get), opts)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: Filename(title, "csv"), ContentType: CSV_CONTENT_TYPE, Data: data}, nil
}

// ExportCSV builds the artifact and hands it to w. w is not called when
// serialization fails.
func ExportCSV[R any](ctx context.Context, w ArtifactWriter, title string, records []R, columns query.Columns, get query.Accessor[R], opts CSVOptions) (Artifact, error) {
	a, err := BuildCSV(title, records, columns, get, opts)
	if err != nil {
		pkg.WarnLog("csv export aborted:", err)
		return Artifact{}, err
	}
	if err := w.WriteArtifact(ctx, a); err != nil {
		return Artifact{}, &Error{Row: -1, Err: err}
	}
	pkg.InfoLog("exported", a.Name, len(records), "rows")
	return a, nil
}

// FileWriter writes artifacts into Dir. The file appears complete or not at
// all.
type FileWriter struct {
	Dir string
}

func (w FileWriter) WriteArtifact(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(w.Dir, "."+a.Name+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(w.Dir, a.Name))
}

// ResponseWriter sends artifacts as HTTP downloads.
type ResponseWriter struct {
	W http.ResponseWriter
}

func (w ResponseWriter) WriteArtifact(ctx context.Context, a Artifact) error {
	h := w.W.Header()
	h.Set("Content-Type", a.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(a.Data)))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	w.W.WriteHeader(http.StatusOK)
	if _, err := w.W.Write(a.Data); err != nil {
		return fmt.Errorf("writing %s: %w", a.Name, err)
	}
	return nil
}
