package contenthdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "ovrsee/internal/api/base/handler"
	contentdto "ovrsee/internal/api/content/dto"
	contentsvc "ovrsee/internal/api/content/service"
	"ovrsee/internal/common"
	"ovrsee/internal/global"
	"ovrsee/internal/logger"
	"ovrsee/internal/utility"
)

// VideoIngestHandler xử lý request ingest video fetch từ TikTok
type VideoIngestHandler struct {
	IngestService *contentsvc.VideoIngestService
}

// NewVideoIngestHandler tạo mới VideoIngestHandler
func NewVideoIngestHandler(freshnessHours int) (*VideoIngestHandler, error) {
	ingestService, err := contentsvc.NewVideoIngestService(freshnessHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create video ingest service: %v", err)
	}
	return &VideoIngestHandler{IngestService: ingestService}, nil
}

// HandleIngest nhận payload video fetch được, đối chiếu với kho video của tổ chức
// @Router /videos/ingest [post]
func (h *VideoIngestHandler) HandleIngest(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input contentdto.VideoIngestInput
		if err := c.Bind().Body(&input); err != nil {
			return basehdl.HandleErrorResponse(c, common.NewError(
				common.ErrCodeValidationFormat,
				"Dữ liệu đầu vào không hợp lệ: "+err.Error(),
				common.StatusBadRequest,
				nil,
			))
		}

		if err := global.Validate.Struct(&input); err != nil {
			return basehdl.HandleErrorResponse(c, common.NewError(
				common.ErrCodeValidationInput,
				err.Error(),
				common.StatusBadRequest,
				nil,
			))
		}

		orgID := utility.String2ObjectID(input.OrganizationID)
		if orgID.IsZero() {
			return basehdl.HandleErrorResponse(c, common.ErrInvalidFormat)
		}

		payloads := make([]contentsvc.VideoPayload, 0, len(input.Videos))
		for _, item := range input.Videos {
			payloads = append(payloads, contentsvc.VideoPayload{
				VideoID:      item.VideoID,
				Description:  item.Description,
				ShareURL:     item.ShareURL,
				CreateTime:   item.CreateTime,
				ViewCount:    item.ViewCount,
				LikeCount:    item.LikeCount,
				CommentCount: item.CommentCount,
				ShareCount:   item.ShareCount,
			})
		}

		summary, err := h.IngestService.IngestFetched(c.Context(), orgID, payloads)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		logger.LogAction("video_ingest", c, map[string]interface{}{
			"organization_id": input.OrganizationID,
			"received":        summary.Received,
			"created":         summary.Created,
			"updated":         summary.Updated,
		})
		return basehdl.HandleSuccessResponse(c, summary)
	})
}
