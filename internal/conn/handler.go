package conn

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tobsdb/tabq/internal/builder"
	"github.com/tobsdb/tabq/internal/export"
	"github.com/tobsdb/tabq/internal/query"
)

type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int `json:"__tabq_req_id__"`
}

func NewErrorResponse(status int, err string) Response {
	return Response{Message: err, Status: status}
}

func NewResponse(status int, message string, data any) Response {
	return Response{Data: data, Message: message, Status: status}
}

// ViewData is the page a client renders along with the state behind it.
type ViewData struct {
	query.View[builder.Row]
	State         query.State `json:"state"`
	RemotePending bool        `json:"remote_pending"`
	RemoteError   string      `json:"remote_error,omitempty"`
}

func NewViewData(t *query.Table[builder.Row]) ViewData {
	v := ViewData{View: t.View(), State: t.State(), RemotePending: t.RemotePending()}
	if v.RemoteErr != nil {
		v.RemoteError = v.RemoteErr.Error()
	}
	return v
}

func viewResponse(s *Session, message string) Response {
	return NewResponse(http.StatusOK, message, NewViewData(s.Table))
}

// configErrorResponse maps engine configuration errors to a status.
func configErrorResponse(err error) Response {
	var field_err *FieldError
	if errors.As(err, &field_err) {
		if len(field_err.Capability) == 0 {
			return NewErrorResponse(http.StatusNotFound, err.Error())
		}
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	switch {
	case errors.Is(err, query.ErrIllegalOperator),
		errors.Is(err, query.ErrUnknownOperator),
		errors.Is(err, query.ErrUnknownFieldType),
		errors.Is(err, query.ErrInvalidRange),
		errors.Is(err, query.ErrInvalidPageSize),
		errors.Is(err, query.ErrDuplicateSortKey),
		errors.Is(err, query.ErrInvalidDirection),
		errors.Is(err, query.ErrEmptyField):
		return NewErrorResponse(http.StatusUnprocessableEntity, err.Error())
	}
	return NewErrorResponse(http.StatusBadRequest, err.Error())
}

func ViewReqHandler(s *Session) Response {
	return viewResponse(s, fmt.Sprintf("Viewing table %s", s.Dataset.Name()))
}

func ColumnsReqHandler(s *Session) Response {
	return NewResponse(http.StatusOK, fmt.Sprintf("Columns of table %s", s.Dataset.Name()), s.Table.Columns())
}

type SetSearchRequest struct {
	Term string `json:"term"`
}

func SetSearchReqHandler(s *Session, raw []byte) Response {
	var req SetSearchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	s.Table.SetSearchTerm(req.Term)
	return viewResponse(s, "Search updated")
}

// FieldError rejects a request naming a field that does not exist or lacks
// a capability. An empty Capability means the field was not found.
type FieldError struct {
	Field      string
	Capability string
}

func (e *FieldError) Error() string {
	if len(e.Capability) == 0 {
		return fmt.Sprintf("Field %s not found", e.Field)
	}
	return fmt.Sprintf("Field %s is not %s", e.Field, e.Capability)
}

func checkColumn(cols query.Columns, field, capability string, allowed func(query.Column) bool) (query.Column, error) {
	col, ok := cols.Find(field)
	if !ok {
		return col, &FieldError{Field: field}
	}
	if !allowed(col) {
		return col, &FieldError{Field: field, Capability: capability}
	}
	return col, nil
}

func isFilterable(c query.Column) bool { return c.Filterable }
func isSortable(c query.Column) bool   { return c.Sortable }

// lookupColumn finds field and checks that it allows capability.
func lookupColumn(s *Session, field, capability string, allowed func(query.Column) bool) (query.Column, *Response) {
	col, err := checkColumn(s.Table.Columns(), field, capability, allowed)
	if err != nil {
		res := configErrorResponse(err)
		return col, &res
	}
	return col, nil
}

type AddFilterRequest struct {
	Field    string         `json:"field"`
	Operator query.Operator `json:"operator"`
	Value    any            `json:"value"`
}

func AddFilterReqHandler(s *Session, raw []byte) Response {
	var req AddFilterRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	col, res := lookupColumn(s, req.Field, "filterable", isFilterable)
	if res != nil {
		return *res
	}

	c, err := query.NewCriterion(req.Field, req.Operator, col.Type, req.Value)
	if err != nil {
		return configErrorResponse(err)
	}
	if err := s.Table.AddFilter(c); err != nil {
		return configErrorResponse(err)
	}
	return viewResponse(s, fmt.Sprintf("Filtering %s", c))
}

type FieldRequest struct {
	Field string `json:"field"`
}

func RemoveFilterReqHandler(s *Session, raw []byte) Response {
	var req FieldRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	s.Table.RemoveFilter(req.Field)
	return viewResponse(s, fmt.Sprintf("Removed filter on %s", req.Field))
}

func ClearFiltersReqHandler(s *Session) Response {
	s.Table.ClearFilters()
	return viewResponse(s, "Cleared filters")
}

type AddSortRequest struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

func AddSortReqHandler(s *Session, raw []byte) Response {
	var req AddSortRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if _, res := lookupColumn(s, req.Field, "sortable", isSortable); res != nil {
		return *res
	}
	dir, err := query.ParseDirection(req.Direction)
	if err != nil {
		return configErrorResponse(err)
	}
	if err := s.Table.AddSort(req.Field, dir); err != nil {
		return configErrorResponse(err)
	}
	return viewResponse(s, "Sort updated")
}

func RemoveSortReqHandler(s *Session, raw []byte) Response {
	var req FieldRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	s.Table.RemoveSort(req.Field)
	return viewResponse(s, fmt.Sprintf("Removed sort on %s", req.Field))
}

type SetSortRequest struct {
	Sort query.SortKeys `json:"sort"`
}

func SetSortReqHandler(s *Session, raw []byte) Response {
	var req SetSortRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	for _, k := range req.Sort {
		if _, res := lookupColumn(s, k.Field, "sortable", isSortable); res != nil {
			return *res
		}
	}
	if err := s.Table.SetSort(req.Sort); err != nil {
		return configErrorResponse(err)
	}
	return viewResponse(s, "Sort updated")
}

type SetPageSizeRequest struct {
	Size int `json:"size"`
}

func SetPageSizeReqHandler(s *Session, raw []byte) Response {
	var req SetPageSizeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if err := s.Table.SetItemsPerPage(req.Size); err != nil {
		return configErrorResponse(err)
	}
	return viewResponse(s, fmt.Sprintf("Showing %d items per page", req.Size))
}

type SetPageRequest struct {
	Page int `json:"page"`
}

func SetPageReqHandler(s *Session, raw []byte) Response {
	var req SetPageRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	s.Table.SetCurrentPage(req.Page)
	return viewResponse(s, "Page updated")
}

type ExportRequest struct {
	Title     string `json:"title"`
	Container string `json:"container"`
}

type CsvArtifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

func exportErrorResponse(err error) Response {
	var export_err *export.Error
	if errors.As(err, &export_err) && export_err.Row >= 0 {
		return NewErrorResponse(http.StatusUnprocessableEntity, err.Error())
	}
	return NewErrorResponse(http.StatusInternalServerError, err.Error())
}

func ExportCsvReqHandler(s *Session, raw []byte) Response {
	var req ExportRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	title := req.Title
	if len(title) == 0 {
		title = s.Dataset.Name()
	}

	a, err := export.BuildCSV(title, s.Table.Filtered(), s.Table.Columns(), query.MapAccessor, s.server.Settings.CSV)
	if err != nil {
		return exportErrorResponse(err)
	}
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Exported table %s", s.Dataset.Name()),
		CsvArtifact{a.Name, a.ContentType, string(a.Data)},
	)
}

func ExportDocumentReqHandler(s *Session, raw []byte) Response {
	var req ExportRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	title := req.Title
	if len(title) == 0 {
		title = s.Dataset.Name()
	}

	doc, err := export.Document(s.ctx, s.server.Settings.Renderer, req.Container, title)
	if err != nil {
		if errors.Is(err, export.ErrNoContainer) {
			return NewErrorResponse(http.StatusBadRequest, err.Error())
		}
		return exportErrorResponse(err)
	}
	return NewResponse(http.StatusOK, "Document requested", doc)
}
