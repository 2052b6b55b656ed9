package conn

import (
	"fmt"
	"net/http"

	"github.com/tobsdb/tabq/internal/auth"
)

type RequestAction string

const (
	// read actions
	RequestActionView    RequestAction = "view"
	RequestActionColumns RequestAction = "columns"

	// state actions
	RequestActionSetSearch    RequestAction = "setSearch"
	RequestActionAddFilter    RequestAction = "addFilter"
	RequestActionRemoveFilter RequestAction = "removeFilter"
	RequestActionClearFilters RequestAction = "clearFilters"
	RequestActionAddSort      RequestAction = "addSort"
	RequestActionRemoveSort   RequestAction = "removeSort"
	RequestActionSetSort      RequestAction = "setSort"
	RequestActionSetPageSize  RequestAction = "setPageSize"
	RequestActionSetPage      RequestAction = "setPage"

	// export actions
	RequestActionExportCsv      RequestAction = "exportCsv"
	RequestActionExportDocument RequestAction = "exportDocument"
)

func (action RequestAction) IsExport() bool {
	return action == RequestActionExportCsv || action == RequestActionExportDocument
}

// RequiredRole is the least privileged role allowed to run action.
func (action RequestAction) RequiredRole() auth.UserRole {
	if action.IsExport() {
		return auth.UserRoleExporter
	}
	return auth.UserRoleViewer
}

// ActionHandler runs one request against the session's table. The caller
// holds the session lock.
func ActionHandler(s *Session, action RequestAction, raw []byte) Response {
	if !s.User.HasClearance(action.RequiredRole()) {
		return NewErrorResponse(http.StatusForbidden, auth.InsufficientPermissions.Error())
	}

	switch action {
	case RequestActionView:
		return ViewReqHandler(s)
	case RequestActionColumns:
		return ColumnsReqHandler(s)
	case RequestActionSetSearch:
		return SetSearchReqHandler(s, raw)
	case RequestActionAddFilter:
		return AddFilterReqHandler(s, raw)
	case RequestActionRemoveFilter:
		return RemoveFilterReqHandler(s, raw)
	case RequestActionClearFilters:
		return ClearFiltersReqHandler(s)
	case RequestActionAddSort:
		return AddSortReqHandler(s, raw)
	case RequestActionRemoveSort:
		return RemoveSortReqHandler(s, raw)
	case RequestActionSetSort:
		return SetSortReqHandler(s, raw)
	case RequestActionSetPageSize:
		return SetPageSizeReqHandler(s, raw)
	case RequestActionSetPage:
		return SetPageReqHandler(s, raw)
	case RequestActionExportCsv:
		return ExportCsvReqHandler(s, raw)
	case RequestActionExportDocument:
		return ExportDocumentReqHandler(s, raw)
	default:
		return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("unknown action: %s", action))
	}
}
