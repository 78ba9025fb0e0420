package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/service/access"
	"github.com/Holography7/listkeeper/internal/service/notify"
	"github.com/Holography7/listkeeper/internal/store"
)

// ListHandler handles TODO-list API requests.
type ListHandler struct {
	listStore store.ListStore
	resolver  *access.Resolver
	notifier  *notify.Notifier
	validator *validator.Validate
}

// NewListHandler creates a new ListHandler with the given dependencies.
func NewListHandler(
	listStore store.ListStore,
	resolver *access.Resolver,
	notifier *notify.Notifier,
) *ListHandler {
	return &ListHandler{
		listStore: listStore,
		resolver:  resolver,
		notifier:  notifier,
		validator: validator.New(),
	}
}

// Create handles POST /todo_list.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	req, ok := h.decodeListRequest(w, r)
	if !ok {
		return
	}

	list, err := domain.NewList(identity.ID, req.Name, toDomainTasks(req.Tasks))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid list data: "+err.Error())
		return
	}

	if err := h.listStore.Create(r.Context(), list); err != nil {
		if errors.Is(err, store.ErrListNameExists) {
			RespondWithError(w, r, http.StatusBadRequest, "You already have a list with this name")
			return
		}
		slog.Error("failed to create list", "error", err, "owner", identity.Username)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to create list")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, toListResponse(list))
}

// Index handles GET /todo_list. Owners see their own lists; superusers see
// every list in the store.
func (h *ListHandler) Index(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var (
		lists []*domain.List
		err   error
	)
	if identity.IsSuperuser() {
		lists, err = h.listStore.FindAll(r.Context())
	} else {
		lists, err = h.listStore.FindByOwner(r.Context(), identity.ID)
	}
	if err != nil {
		slog.Error("failed to list lists", "error", err, "username", identity.Username)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to fetch lists")
		return
	}

	responses := make([]ListResponse, 0, len(lists))
	for _, l := range lists {
		responses = append(responses, toListResponse(l))
	}

	RespondWithJSON(w, r, http.StatusOK, responses)
}

// Get handles GET /todo_list/{id}.
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, list, ok := h.authorizeListRequest(w, r)
	if !ok {
		return
	}

	RespondWithJSON(w, r, http.StatusOK, toListResponse(list))
}

// Update handles PUT /todo_list/{id}. The request body fully replaces the
// list name and its tasks.
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, list, ok := h.authorizeListRequest(w, r)
	if !ok {
		return
	}

	req, ok := h.decodeListRequest(w, r)
	if !ok {
		return
	}

	list.Name = req.Name
	list.ReplaceTasks(toDomainTasks(req.Tasks))

	if err := list.Validate(); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid list data: "+err.Error())
		return
	}

	if err := h.listStore.Update(r.Context(), list); err != nil {
		switch {
		case errors.Is(err, store.ErrListNameExists):
			RespondWithError(w, r, http.StatusBadRequest, "You already have a list with this name")
		case errors.Is(err, store.ErrListNotFound):
			RespondWithError(w, r, http.StatusNotFound, "List not found")
		default:
			slog.Error("failed to update list", "error", err,
				"list_id", list.ID, "username", identity.Username)
			RespondWithError(w, r, http.StatusInternalServerError, "Failed to update list")
		}
		return
	}

	RespondWithJSON(w, r, http.StatusOK, toListResponse(list))
}

// Delete handles DELETE /todo_list/{id}. The deletion commits before any
// notification fan-out starts, so delivery trouble never resurrects a list.
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, list, ok := h.authorizeListRequest(w, r)
	if !ok {
		return
	}

	if err := h.listStore.Delete(r.Context(), list.ID); err != nil {
		if errors.Is(err, store.ErrListNotFound) {
			RespondWithError(w, r, http.StatusNotFound, "List not found")
			return
		}
		slog.Error("failed to delete list", "error", err,
			"list_id", list.ID, "username", identity.Username)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to delete list")
		return
	}

	if h.notifier != nil {
		h.notifier.ListDeleted(r.Context(), identity, list)
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizeListRequest resolves the caller and the list from the path,
// answering 404 for both an absent list and a list the caller cannot see.
func (h *ListHandler) authorizeListRequest(
	w http.ResponseWriter,
	r *http.Request,
) (*domain.Identity, *domain.List, bool) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return nil, nil, false
	}

	listID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, nil, false
	}

	list, err := h.resolver.AuthorizeList(r.Context(), identity, listID)
	if err != nil {
		if errors.Is(err, store.ErrListNotFound) {
			RespondWithError(w, r, http.StatusNotFound, "List not found")
			return nil, nil, false
		}
		slog.Error("failed to authorize list access", "error", err,
			"list_id", listID, "username", identity.Username)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to fetch list")
		return nil, nil, false
	}

	return identity, list, true
}

func (h *ListHandler) decodeListRequest(w http.ResponseWriter, r *http.Request) (ListRequest, bool) {
	var req ListRequest

	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return req, false
	}

	if err := validateUniqueTaskNames(req.Tasks); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return req, false
	}

	return req, true
}

func validateUniqueTaskNames(tasks []TaskPayload) error {
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.Name]; dup {
			return errors.New("Task names must be unique within a list")
		}
		seen[t.Name] = struct{}{}
	}
	return nil
}

func toDomainTasks(tasks []TaskPayload) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = domain.Task{Name: t.Name, Done: t.Done}
	}
	return out
}

func toListResponse(list *domain.List) ListResponse {
	tasks := make([]TaskPayload, 0, len(list.Tasks))
	for _, t := range list.Tasks {
		tasks = append(tasks, TaskPayload{Name: t.Name, Done: t.Done})
	}
	return ListResponse{
		UUID:  list.ID,
		Name:  list.Name,
		Tasks: tasks,
	}
}
