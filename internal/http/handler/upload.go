package handler

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sheetdash/internal/http/middleware"
	"sheetdash/internal/model"
	"sheetdash/internal/repository"
	"sheetdash/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// actorOf returns the identity stored by middleware.Identity.
func actorOf(c *fiber.Ctx) (model.Actor, error) {
	a, ok := middleware.ActorFromCtx(c)
	if !ok {
		return model.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "unauthenticated")
	}
	return a, nil
}

// uuidParam returns the named path parameter when it is a valid UUID.
func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

// UploadSpreadsheet ingests a multipart "file" field.
//
//	@Summary	Upload a spreadsheet
//	@Tags		uploads
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		file	formData	file	true	"xlsx file"
//	@Success	201		{object}	model.UploadRecord
//	@Failure	400		{object}	errorPayload
//	@Failure	413		{object}	errorPayload
//	@Router		/uploads [post]
func UploadSpreadsheet(svc service.UploadService, maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if maxBytes > 0 && fh.Size > maxBytes {
			return writeError(c, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "file exceeds the upload limit")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
		}

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		rec, err := svc.Ingest(c.UserContext(), actor.ID, fh.Filename, ct, data)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// ListUploads returns the caller's upload history.
//
//	@Summary	Upload history
//	@Tags		uploads
//	@Produce	json
//	@Param		sort	query	string	false	"newest or oldest"
//	@Param		limit	query	int		false	"maximum number of records"
//	@Success	200		{array}	model.UploadMeta
//	@Router		/uploads [get]
func ListUploads(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		limit := 0
		if s := c.Query("limit"); s != "" {
			limit, err = strconv.Atoi(s)
			if err != nil || limit < 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
			}
		}

		res, err := svc.History(c.UserContext(), actor, repository.ListQuery{
			Sort:  repository.ParseSortOrder(c.Query("sort")),
			Limit: limit,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetUpload returns one record with its decoded rows.
//
//	@Summary	Get an upload
//	@Tags		uploads
//	@Produce	json
//	@Param		id	path		string	true	"upload id"
//	@Success	200	{object}	model.UploadRecord
//	@Failure	404	{object}	errorPayload
//	@Router		/uploads/{id} [get]
func GetUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rec, err := svc.Get(c.UserContext(), actor, id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(rec)
	}
}

// DownloadUpload streams the original file.
//
//	@Summary	Download the original file
//	@Tags		uploads
//	@Produce	octet-stream
//	@Param		id	path	string	true	"upload id"
//	@Success	200	{file}	binary
//	@Failure	404	{object}	errorPayload
//	@Router		/uploads/{id}/download [get]
func DownloadUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, rec, err := svc.Download(c.UserContext(), actor, id)
		if err != nil {
			return serviceError(c, err)
		}
		c.Set(fiber.HeaderContentType, rec.ContentType)
		c.Set(fiber.HeaderContentDisposition, attachment(rec.OriginalName))
		// fasthttp closes rc once the body is written.
		return c.SendStream(rc, int(rec.Size))
	}
}

// DownloadURL returns a presigned link to the original file.
//
//	@Summary	Presigned download URL
//	@Tags		uploads
//	@Produce	json
//	@Param		id		path		string	true	"upload id"
//	@Param		expiry	query		int		false	"expiry in seconds"
//	@Success	200		{object}	map[string]string
//	@Failure	404		{object}	errorPayload
//	@Router		/uploads/{id}/download-url [get]
func DownloadURL(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var expiry time.Duration
		if s := c.Query("expiry"); s != "" {
			sec, err := strconv.Atoi(s)
			if err != nil || sec < 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRY", "invalid expiry")
			}
			expiry = time.Duration(sec) * time.Second
		}
		u, err := svc.DownloadURL(c.UserContext(), actor, id, expiry)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

// ExportUpload re-encodes the decoded rows as xlsx.
//
//	@Summary	Export decoded rows as xlsx
//	@Tags		uploads
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param		id	path	string	true	"upload id"
//	@Success	200	{file}	binary
//	@Failure	422	{object}	errorPayload
//	@Router		/uploads/{id}/export [get]
func ExportUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		b, rec, err := svc.Export(c.UserContext(), actor, id)
		if err != nil {
			return serviceError(c, err)
		}
		name := strings.TrimSuffix(rec.OriginalName, path.Ext(rec.OriginalName)) + "-export.xlsx"
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, attachment(name))
		return c.Send(b)
	}
}

// DeleteUpload removes a record and its blob; deleting a missing record answers 204.
//
//	@Summary	Delete an upload
//	@Tags		uploads
//	@Param		id	path	string	true	"upload id"
//	@Success	204
//	@Router		/uploads/{id} [delete]
func DeleteUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), actor, id); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetInsight computes column metrics and a narrative summary of an upload.
//
//	@Summary	Upload insight
//	@Tags		uploads
//	@Produce	json
//	@Param		id	path		string	true	"upload id"
//	@Success	200	{object}	service.Insight
//	@Failure	422	{object}	errorPayload
//	@Router		/uploads/{id}/insight [get]
func GetInsight(svc service.InsightService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.Generate(c.UserContext(), actor, id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}
