package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/lessonloop/ingest-ms-go/internal/api_context"
	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/usecase/artifact"
	"github.com/lessonloop/ingest-ms-go/internal/validation"
)

// maxMultipartMemory bounds how much of the upload lives in memory before
// spilling to disk.
const maxMultipartMemory = 32 << 20 // 32 MiB

type SubmitArtifactRequest struct {
	Filename  string `json:"filename" validate:"required,max=255"`
	MimeType  string `json:"mime_type" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"gt=0"`
}

// SubmitArtifactHandler accepts a multipart upload and hands it to the
// ingestion pipeline. The response carries the new artifact id; processing
// happens asynchronously.
func SubmitArtifactHandler(svc artifact.IngestionSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := api_context.OwnerIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "owner ID is required", nil)
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			WriteError(w, http.StatusBadRequest, "Could not parse multipart form", err)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "A 'file' form field is required", err)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				log.Printf("failed to close uploaded file: %v", err)
			}
		}()

		req := SubmitArtifactRequest{
			Filename:  header.Filename,
			MimeType:  header.Header.Get("Content-Type"),
			SizeBytes: header.Size,
		}
		if errs := validation.ValidateStruct(req); errs != nil {
			errsJSON, err := validation.ErrorsToJson(errs)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "Validation error (could not encode details)", err)
				return
			}

			// return the validation errors payload directly
			RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
			logger.Warnf(r.Context(), "❌  Validation failed: %s", errsJSON)
			return
		}

		a, err := svc.SubmitIngestion(r.Context(), artifact.SubmitIngestionInput{
			OwnerID:          ownerID,
			OriginalFilename: req.Filename,
			MimeType:         req.MimeType,
			SizeBytes:        req.SizeBytes,
			Reader:           file,
		})
		if err != nil {
			if errors.Is(err, artifact.ErrValidation) {
				WriteError(w, http.StatusUnprocessableEntity, err.Error(), nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not submit the file for ingestion", err)
			return
		}

		RespondJSON(w, http.StatusAccepted, a)
		log.Printf("✅  Accepted artifact #%s for ingestion", a.ID)
	}
}
