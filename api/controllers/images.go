package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/rayz-store/tienda-backend/api/responses"
	"github.com/rayz-store/tienda-backend/internal/images"
	pkgerrors "github.com/rayz-store/tienda-backend/pkg/errors"
	"github.com/rayz-store/tienda-backend/pkg/logger"
)

// multipartOverhead leaves room for the form boundary and the descripcion field.
const multipartOverhead = 64 * 1024

func PanelListImages(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("image"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), tenantID, ids[0])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// PanelUploadImage stores the multipart `file` part and registers it.
func PanelUploadImage(svc images.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("image"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if maxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+multipartOverhead)
		}
		if err := r.ParseMultipartForm(multipartOverhead); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds the upload limit"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload"))
			return
		}

		descripcion := r.FormValue("descripcion")
		image, err := svc.Upload(r.Context(), tenantID, ids[0], images.UploadInput{
			FileName:    header.Filename,
			Data:        data,
			Descripcion: trimmedPtr(&descripcion, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, image)
	}
}

func PanelSetPrincipalImage(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("image"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId", "imagenId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.SetPrincipal(r.Context(), tenantID, ids[0], ids[1])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// PanelDeleteImage removes the image and returns the remaining gallery, with
// a new principal when the deleted one held the flag.
func PanelDeleteImage(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("image"))
			return
		}
		tenantID, ids, err := panelScope(r, "productoId", "imagenId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.Delete(r.Context(), tenantID, ids[0], ids[1])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
