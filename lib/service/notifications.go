package service

import (
	"context"
	"fmt"
	"time"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/getsentry/sentry-go"
	"github.com/uptrace/bun"
)

var notificationTitles = map[string]string{
	common.NotificationPaymentVerified: "Payment verified",
	common.NotificationPaymentReview:   "Payment needs review",
	common.NotificationPaymentRejected: "Payment rejected",
	common.NotificationPaymentInvalid:  "Payment invalidated",
}

// notifyPaymentOutcome writes in-app notifications for the payer and the
// class treasurers and publishes the payment event. Notification failures
// are logged and swallowed: they never fail the operation that produced
// the outcome.
func (svc *ClassFundService) notifyPaymentOutcome(ctx context.Context, payment *models.Payment, notificationType string) {
	classId, err := svc.paymentClassId(ctx, payment)
	if err != nil {
		svc.Logger.Errorf("Failed to resolve class for payment notification: payment_id %v error %v", payment.ID, err)
		sentry.CaptureException(err)
		return
	}

	recipients := map[int64]bool{}
	payer, err := svc.FindMemberByID(ctx, payment.PayerID)
	if err == nil {
		recipients[payer.UserID] = true
	}
	treasurers, err := svc.TreasurerLikeUserIds(ctx, classId)
	if err != nil {
		svc.Logger.Errorf("Failed to list treasurers for notification: class_id %v error %v", classId, err)
	}
	for _, id := range treasurers {
		recipients[id] = true
	}

	title := notificationTitles[notificationType]
	body := fmt.Sprintf("Payment #%d of %d is now %s", payment.ID, payment.Amount, payment.Status)
	if payment.VerifyReasonCode != "" && payment.Status == common.PaymentStatusSubmitted {
		body = fmt.Sprintf("Payment #%d of %d needs review: %s", payment.ID, payment.Amount, payment.VerifyReasonCode)
	}

	for userId := range recipients {
		notification := &models.Notification{
			UserID:  userId,
			ClassID: classId,
			Type:    notificationType,
			Title:   title,
			Body:    body,
			SentAt:  bun.NullTime{Time: time.Now()},
		}
		if _, err := svc.DB.NewInsert().Model(notification).Exec(ctx); err != nil {
			svc.Logger.Errorf("Failed to store notification: user_id %v error %v", userId, err)
			sentry.CaptureException(err)
		}
	}

	svc.publishPaymentEvent(classId, *payment)
}

func (svc *ClassFundService) ListNotifications(ctx context.Context, userId int64, unreadOnly bool) ([]models.Notification, error) {
	notifications := []models.Notification{}
	q := svc.DB.NewSelect().Model(&notifications).
		Where("user_id = ?", userId).
		Order("id DESC").
		Limit(100)
	if unreadOnly {
		q = q.Where("is_read = FALSE")
	}
	err := q.Scan(ctx)
	return notifications, err
}

func (svc *ClassFundService) MarkNotificationRead(ctx context.Context, userId, notificationId int64) error {
	res, err := svc.DB.NewUpdate().Model((*models.Notification)(nil)).
		Set("is_read = TRUE").
		Where("id = ? AND user_id = ?", notificationId, userId).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
