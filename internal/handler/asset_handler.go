package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"asset-relay/internal/services"
	"asset-relay/internal/transport/httpdto"
	relay_errors "asset-relay/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AssetHandler struct {
	ingest  *services.IngestService
	gateway *services.GatewayService
}

func NewAssetHandler(ingest *services.IngestService, gateway *services.GatewayService) *AssetHandler {
	return &AssetHandler{ingest: ingest, gateway: gateway}
}

// Decode ingests a base64 data-URL and returns the asset's retrieval URL.
func (h *AssetHandler) Decode(c *gin.Context) {
	var req httpdto.DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("Invalid request body"))
		return
	}
	rec, err := h.ingest.IngestDataURL(c.Request.Context(), req.Image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.DecodeResponse{URL: "/assets/" + rec.ID})
}

// Upload ingests a multipart file upload.
func (h *AssetHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("No file uploaded"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("No file uploaded"))
		return
	}
	defer file.Close()

	rec, err := h.ingest.IngestUpload(c.Request.Context(), file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}

	sum := sha256.Sum256(rec.Payload)
	c.JSON(http.StatusOK, httpdto.UploadResponse{
		Hash: hex.EncodeToString(sum[:]),
		URL:  "/identifier/" + rec.ID,
	})
}

// Asset serves a stored asset by id.
func (h *AssetHandler) Asset(c *gin.Context) {
	rec, err := h.gateway.FetchLocal(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("Asset unavailable"))
		return
	}
	c.Data(http.StatusOK, rec.ContentType, rec.Payload)
}

// Identifier serves a stored asset by id under the upload namespace.
func (h *AssetHandler) Identifier(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.gateway.FetchLocal(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(fmt.Sprintf("No Asset found under identifier %s", id)))
		return
	}
	c.Data(http.StatusOK, rec.ContentType, rec.Payload)
}

// Attachment proxies an upstream attachment path.
func (h *AssetHandler) Attachment(c *gin.Context) {
	rec, err := h.gateway.ProxyAttachment(
		c.Request.Context(),
		c.Param("channel"),
		c.Param("message"),
		c.Param("attachment"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, rec.ContentType, rec.Payload)
}

// respondError translates component errors into HTTP responses. This is the
// only place the error taxonomy meets status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, relay_errors.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("Malformed input"))
	case errors.Is(err, relay_errors.ErrUnsupportedMediaType):
		c.JSON(http.StatusUnsupportedMediaType, httpdto.NewErrorResponse("Unsupported media type"))
	case errors.Is(err, relay_errors.ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse("Payload too large"))
	case errors.Is(err, relay_errors.ErrCapacityExceeded):
		c.JSON(http.StatusInsufficientStorage, httpdto.NewErrorResponse("Storage capacity exceeded"))
	case errors.Is(err, relay_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("Asset unavailable"))
	case errors.Is(err, relay_errors.ErrAssetExpiredOrMissing):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("Asset expired or not found"))
	case errors.Is(err, relay_errors.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse("Upstream unavailable"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("Internal server error"))
	}
}
