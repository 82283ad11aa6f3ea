package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cmcs/claimserver/internal/services"
	"github.com/cmcs/claimserver/types"
)

const (
	maxMultipartMemory = 32 << 20
	formFieldHours     = "hours_worked"
	formFieldNotes     = "notes"
	formFieldDocuments = "documents"
)

// ClaimHandler provides HTTP handlers for the claim workflow.
type ClaimHandler struct {
	claimService *services.ClaimService
}

// NewClaimHandler constructs a handler with the provided service.
func NewClaimHandler(claimService *services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// ClaimRouter registers claim routes on the given router. Every route
// requires authentication; role checks are layered per route.
func ClaimRouter(
	r chi.Router,
	claimService *services.ClaimService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewClaimHandler(claimService)

	lecturerOnly := RequireRole(userService, types.RoleLecturer)
	coordinatorOnly := RequireRole(userService, types.RoleCoordinator)
	managerOnly := RequireRole(userService, types.RoleManager)
	reviewers := RequireRole(userService, types.RoleCoordinator, types.RoleManager, types.RoleHR)

	r.Use(authMiddleware)

	r.With(lecturerOnly).Post("/", handler.SubmitClaim)
	r.With(lecturerOnly).Get("/mine", handler.MyDashboard)
	r.With(coordinatorOnly).Get("/pending/coordinator", handler.CoordinatorPending)
	r.With(managerOnly).Get("/pending/manager", handler.ManagerPending)
	r.With(reviewers).Get("/past", handler.PastClaims)
	r.With(reviewers).Get("/", handler.ListClaims)

	decisionMakers := RequireRole(userService, types.RoleCoordinator, types.RoleManager)
	r.Route("/{claimID}", func(r chi.Router) {
		r.Get("/", handler.GetClaim)
		r.Delete("/", handler.DeleteClaim)
		r.With(lecturerOnly).Post("/documents", handler.AttachDocuments)
		r.With(decisionMakers).Post("/approve", handler.action(services.ActionApprove))
		r.With(decisionMakers).Post("/reject", handler.action(services.ActionReject))
		r.With(managerOnly).Post("/pay", handler.action(services.ActionMarkPaid))
	})

	r.Get("/documents/{documentID}", handler.DownloadDocument)
}

// SubmitClaim creates a claim from a multipart form: hours_worked and
// notes fields plus any number of files under "documents".
func (h *ClaimHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	hours, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue(formFieldHours)), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hours_worked")
		return
	}
	notes := r.FormValue(formFieldNotes)

	uploads, closeUploads, err := formUploads(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeUploads()

	claim, warnings, err := h.claimService.Submit(r.Context(), userID, hours, notes, uploads)
	if err != nil {
		writeServiceError(w, err, "failed to submit claim")
		return
	}

	writeJSON(w, http.StatusCreated, ClaimSubmitResponse{Claim: claim, Warnings: warnings})
}

// AttachDocuments uploads more files to the caller's existing claim.
func (h *ClaimHandler) AttachDocuments(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	claimID, err := parseIDParam(chi.URLParam(r, "claimID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	uploads, closeUploads, err := formUploads(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeUploads()

	claim, warnings, err := h.claimService.AttachDocuments(r.Context(), claimID, userID, uploads)
	if err != nil {
		writeServiceError(w, err, "failed to attach documents")
		return
	}
	writeJSON(w, http.StatusOK, ClaimSubmitResponse{Claim: claim, Warnings: warnings})
}

// MyDashboard returns the lecturer's own claims with summary counters.
func (h *ClaimHandler) MyDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dashboard, err := h.claimService.DashboardFor(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "failed to load claims")
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *ClaimHandler) CoordinatorPending(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claimService.CoordinatorPending(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list claims")
		return
	}
	writeJSON(w, http.StatusOK, ClaimListResponse{Items: claims})
}

func (h *ClaimHandler) ManagerPending(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claimService.ManagerPending(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list claims")
		return
	}
	writeJSON(w, http.StatusOK, ClaimListResponse{Items: claims})
}

func (h *ClaimHandler) PastClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claimService.Past(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list claims")
		return
	}
	writeJSON(w, http.StatusOK, ClaimListResponse{Items: claims})
}

// ListClaims returns the full overview, optionally narrowed by the
// filter query parameter (all, approved, paid).
func (h *ClaimHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claimService.Filtered(r.Context(), strings.TrimSpace(r.URL.Query().Get("filter")))
	if err != nil {
		writeServiceError(w, err, "failed to list claims")
		return
	}
	writeJSON(w, http.StatusOK, ClaimListResponse{Items: claims})
}

func (h *ClaimHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	claimID, err := parseIDParam(chi.URLParam(r, "claimID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := h.claimService.Get(r.Context(), claimID)
	if err != nil {
		writeServiceError(w, err, "failed to fetch claim")
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

func (h *ClaimHandler) DeleteClaim(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	claimID, err := parseIDParam(chi.URLParam(r, "claimID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	if err := h.claimService.Delete(r.Context(), claimID, userID); err != nil {
		writeServiceError(w, err, "failed to delete claim")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadDocument streams the decrypted document content back with
// its original file name.
func (h *ClaimHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseIDParam(chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, content, err := h.claimService.DownloadDocument(r.Context(), documentID)
	if err != nil {
		writeServiceError(w, err, "failed to fetch document")
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(doc.FileType))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (h *ClaimHandler) action(action services.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		claimID, err := parseIDParam(chi.URLParam(r, "claimID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid claim id")
			return
		}

		claim, err := h.claimService.Transition(r.Context(), claimID, userID, action)
		if err != nil {
			writeServiceError(w, err, "failed to update claim")
			return
		}
		writeJSON(w, http.StatusOK, claim)
	}
}

// ClaimSubmitResponse carries the created claim plus any per-file
// upload warnings.
type ClaimSubmitResponse struct {
	Claim    types.Claim              `json:"claim"`
	Warnings []services.UploadWarning `json:"warnings,omitempty"`
}

// ClaimListResponse is the list payload for the dashboard views.
type ClaimListResponse struct {
	Items []types.Claim `json:"items"`
}

func formUploads(form *multipart.Form) ([]services.Upload, func(), error) {
	if form == nil {
		return nil, func() {}, nil
	}

	var closers []func()
	closeAll := func() {
		for _, close := range closers {
			close()
		}
	}

	files := form.File[formFieldDocuments]
	uploads := make([]services.Upload, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, errors.New("failed to read upload")
		}
		closers = append(closers, func() { _ = file.Close() })
		uploads = append(uploads, services.Upload{
			FileName: fileHeader.Filename,
			Size:     fileHeader.Size,
			Content:  file,
		})
	}
	return uploads, closeAll, nil
}

func contentTypeFor(fileType string) string {
	switch fileType {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
