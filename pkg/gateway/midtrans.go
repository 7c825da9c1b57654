package gateway

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type MidtransGateway struct {
	client    snap.Client
	serverKey string
	finishURL string
}

func NewMidtransGateway(serverKey string, production bool, finishURL string) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransGateway{
		serverKey: serverKey,
		finishURL: finishURL,
	}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.GrossAmount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: g.finishURL,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.ItemID,
				Price: req.UnitPrice,
				Qty:   int32(req.Quantity),
				Name:  req.ItemName,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := g.client.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	return &ChargeResult{
		Token:       snapResp.Token,
		RedirectURL: snapResp.RedirectURL,
	}, nil
}

// VerifySignature checks the webhook signature:
// SHA512(order_id + status_code + gross_amount + server_key).
func (g *MidtransGateway) VerifySignature(orderId, statusCode, grossAmount, signatureKey string) bool {
	input := orderId + statusCode + grossAmount + g.serverKey
	expected := fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureKey)) == 1
}
