package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/classfund/classfund.go/db/models"
)

// publishPaymentEvent pushes a payment status change to in-process
// subscribers, both on the class topic and the global one.
func (svc *ClassFundService) publishPaymentEvent(classId int64, payment models.Payment) {
	svc.PaymentPubSub.Publish(classId, payment)
	if classId != PubsubTopicAll {
		svc.PaymentPubSub.Publish(PubsubTopicAll, payment)
	}
}

func (svc *ClassFundService) StartWebhookSubscription(ctx context.Context) {

	svc.Logger.Infof("Starting webhook subscription with webhook url %s", svc.Config.WebhookUrl)
	payments := make(chan models.Payment)
	subId := svc.PaymentPubSub.Subscribe(PubsubTopicAll, payments)
	defer svc.PaymentPubSub.Unsubscribe(subId, PubsubTopicAll)
	for {
		select {
		case <-ctx.Done():
			return
		case payment := <-payments:
			svc.postToWebhook(payment)
		}
	}
}

func (svc *ClassFundService) postToWebhook(payment models.Payment) {

	payload := new(bytes.Buffer)
	err := json.NewEncoder(payload).Encode(payment)
	if err != nil {
		svc.Logger.Error(err)
		return
	}

	resp, err := http.Post(svc.Config.WebhookUrl, "application/json", payload)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			svc.Logger.Error(err)
		}
		svc.Logger.Errorf("Webhook status code was %d, body: %s", resp.StatusCode, msg)
	}
}
