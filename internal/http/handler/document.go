package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"metrodoc/internal/http/middleware"
	"metrodoc/internal/model"
	"metrodoc/internal/query"
	"metrodoc/internal/service"
	"metrodoc/internal/storage"
)

// ListDocuments returns documents newest first. Without a limit every document is returned.
//
// @Summary  List documents
// @Tags     documents
// @Produce  json
// @Param    limit   query int false "page size, 0 for all"
// @Param    offset  query int false "page offset"
// @Success  200 {object} successPayload
// @Failure  400 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := docSvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return writeList(c, res.Items, res.Total)
	}
}

// SearchDocuments filters by text, department and priority on the server.
//
// @Summary  Search documents
// @Tags     documents
// @Produce  json
// @Param    q          query string false "free text"
// @Param    department query string false "department or all"
// @Param    priority   query string false "none, low, medium or high"
// @Param    sort       query string false "latest, oldest or title"
// @Success  200 {object} successPayload
// @Security BearerAuth
// @Router   /api/documents/search [get]
func SearchDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sort, ok := query.ParseSort(c.Query("sort"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SORT", "sort must be latest, oldest or title")
		}
		items, err := docSvc.Search(c.UserContext(), service.SearchRequest{
			Request: query.Request{
				Text:       c.Query("q"),
				Department: c.Query("department"),
				Sort:       sort,
			},
			Priority: model.Priority(strings.ToLower(c.Query("priority"))),
		})
		if err != nil {
			return respondError(c, err)
		}
		return writeList(c, items, len(items))
	}
}

// UploadDocument accepts multipart/form-data with a "file" part and the metadata fields
// title, description, department, priority and tags.
//
// @Summary  Upload a document
// @Tags     documents
// @Accept   multipart/form-data
// @Produce  json
// @Param    file        formData file   true  "document file"
// @Param    title       formData string true  "title"
// @Param    department  formData string true  "department"
// @Param    description formData string false "description"
// @Param    priority    formData string false "priority"
// @Param    tags        formData string false "JSON array or comma separated list"
// @Success  201 {object} successPayload
// @Failure  400 {object} errorPayload
// @Failure  413 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/upload [post]
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		tags, err := parseTags(c.FormValue("tags"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_TAGS", "tags must be a JSON array or a comma separated list")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		var userID string
		if claims, ok := middleware.ClaimsFrom(c); ok {
			userID = claims.Subject
		}

		doc, err := docSvc.Upload(c.UserContext(), service.UploadInput{
			Reader:      f,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Metadata: model.Metadata{
				Title:       c.FormValue("title"),
				Description: c.FormValue("description"),
				Department:  c.FormValue("department"),
				Priority:    model.Priority(strings.ToLower(strings.TrimSpace(c.FormValue("priority")))),
				Tags:        tags,
			},
			UserID: userID,
		})
		if err != nil {
			return respondError(c, err)
		}
		return writeData(c, fiber.StatusCreated, doc)
	}
}

// parseTags accepts `["a","b"]` or `a, b`.
func parseTags(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return nil, err
		}
		return tags, nil
	}
	return strings.Split(raw, ","), nil
}

// GetDocument returns one document.
//
// @Summary  Get a document
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} successPayload
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := docSvc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return writeData(c, fiber.StatusOK, doc)
	}
}

// UpdateDocument applies a partial update. Keys outside the mutable fields are rejected.
//
// @Summary  Update a document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} successPayload
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/{id} [put]
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		patch, err := model.DecodePatch(c.Body())
		if err != nil {
			return respondError(c, err)
		}
		doc, err := docSvc.Update(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return respondError(c, err)
		}
		return writeData(c, fiber.StatusOK, doc)
	}
}

// DeleteDocument removes the stored file and the document row.
//
// @Summary  Delete a document
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} successPayload
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := docSvc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return writeMessage(c, "Document deleted successfully")
	}
}

// DocumentSummary returns the generated summary of a document.
//
// @Summary  Summarize a document
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} successPayload
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/{id}/summary [get]
func DocumentSummary(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := docSvc.Summary(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return writeData(c, fiber.StatusOK, s)
	}
}

// DownloadDocument streams the original file as an attachment. With redirect=true it answers
// 302 to a presigned storage link instead.
//
// @Summary  Download a document
// @Tags     documents
// @Produce  octet-stream
// @Param    id       path  string true  "document id"
// @Param    redirect query bool   false "redirect to a presigned storage link"
// @Success  200 {file} file
// @Success  302
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/{id}/download [get]
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.QueryBool("redirect") {
			link, err := docSvc.DownloadURL(c.UserContext(), c.Params("id"))
			if err != nil {
				return respondError(c, err)
			}
			return c.Redirect(link, fiber.StatusFound)
		}

		rc, doc, err := docSvc.Download(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, storage.ContentTypeFor(doc.FileType))
		c.Set(fiber.HeaderContentDisposition, storage.ContentDisposition(doc.FileName))
		size := -1
		if doc.FileSize > 0 {
			size = int(doc.FileSize)
		}
		// fasthttp closes rc once the body is written.
		return c.Status(fiber.StatusOK).SendStream(rc, size)
	}
}
