package services

import (
	"context"

	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/logging"
	"loipen-tracker/internal/receipts"
)

// Presigner signs receipt URLs; *receipts.Presigner implements it.
type Presigner interface {
	UploadURL(ctx context.Context, userID, fileName string) (*receipts.Upload, error)
	DownloadURL(ctx context.Context, userID, key string) (string, error)
}

// receiptServiceImpl implements the ReceiptService interface
type receiptServiceImpl struct {
	presigner Presigner
	log       logging.Logger
}

// NewReceiptService creates a new ReceiptService instance. A nil presigner
// makes every call fail with a store error.
func NewReceiptService(p Presigner, log logging.Logger) ReceiptService {
	if log == nil {
		log = logging.Discard()
	}
	return &receiptServiceImpl{presigner: p, log: log}
}

func errReceiptsDisabled() error {
	return apperrors.NewStoreError("receipt storage is not configured", nil)
}

// UploadURL returns a presigned upload for a new receipt of userID.
func (r *receiptServiceImpl) UploadURL(ctx context.Context, userID, fileName string) (*receipts.Upload, error) {
	if r.presigner == nil {
		return nil, errReceiptsDisabled()
	}
	up, err := r.presigner.UploadURL(ctx, userID, fileName)
	if err != nil {
		if apperrors.ShouldLogError(err) {
			r.log.Error(ctx, "presign receipt upload failed", "user", userID, "error", err)
		}
		return nil, err
	}
	r.log.Debug(ctx, "receipt upload presigned", "user", userID, "key", up.Key)
	return up, nil
}

// DownloadURL returns a presigned download for one of userID's receipts.
func (r *receiptServiceImpl) DownloadURL(ctx context.Context, userID, key string) (string, error) {
	if r.presigner == nil {
		return "", errReceiptsDisabled()
	}
	url, err := r.presigner.DownloadURL(ctx, userID, key)
	if err != nil {
		if apperrors.ShouldLogError(err) {
			r.log.Warn(ctx, "presign receipt download failed", "user", userID, "key", key, "error", err)
		}
		return "", err
	}
	return url, nil
}
