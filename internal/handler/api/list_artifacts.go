package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/lessonloop/ingest-ms-go/internal/api_context"
	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/usecase/artifact"
)

func ListArtifactsHandler(svc artifact.Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := api_context.OwnerIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "owner ID is required", nil)
			return
		}

		in := artifact.ListArtifactsInput{OwnerID: ownerID}
		q := r.URL.Query()
		if v := q.Get("kind"); v != "" {
			kind := model.ArtifactKind(v)
			in.Kind = &kind
		}
		if v := q.Get("status"); v != "" {
			status := model.ArtifactStatus(v)
			in.Status = &status
		}
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer", nil)
				return
			}
			in.Limit = n
		}
		if v := q.Get("offset"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				WriteError(w, http.StatusBadRequest, "offset must be a non-negative integer", nil)
				return
			}
			in.Offset = n
		}

		artifacts, err := svc.ListArtifacts(r.Context(), in)
		if err != nil {
			if errors.Is(err, artifact.ErrValidation) {
				WriteError(w, http.StatusUnprocessableEntity, err.Error(), nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not list artifacts", err)
			return
		}

		RespondJSON(w, http.StatusOK, artifacts)
		log.Printf("✅  Listed %d artifacts for owner #%s", len(artifacts), ownerID)
	}
}
