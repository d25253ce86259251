// Command basic is the smallest end-to-end use of the Midtrans provider.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"indo-payment/internal/logger"
	"indo-payment/internal/payment"
	"indo-payment/internal/payment/midtrans"
	"indo-payment/internal/utils"

	"go.uber.org/zap"
)

func main() {
	logger.Init("development")
	defer logger.Sync()
	log := logger.L()

	provider, err := midtrans.New(midtrans.Config{
		ServerKey:   os.Getenv("MIDTRANS_SERVER_KEY"),
		Environment: payment.EnvironmentSandbox,
		Options: midtrans.Options{
			EnabledPayments: []string{"gopay", "qris", "bank_transfer"},
		},
	})
	if err != nil {
		log.Fatal("Failed to configure midtrans", zap.Error(err))
	}

	ctx := context.Background()

	invoice, err := provider.CreateInvoice(ctx, payment.CreateInvoiceParams{
		Amount:   100000,
		Currency: payment.CurrencyIDR,
		OrderID:  utils.GenerateOrderID("ORDER"),
		Customer: payment.CustomerInfo{
			Name:  "Budi Santoso",
			Email: "budi@example.com",
			Phone: "081234567890",
		},
		Items: []payment.InvoiceItem{
			{Name: "Product A", Price: 100000, Quantity: 1},
		},
		ExpiresIn: 60,
	})
	if err != nil {
		log.Fatal("Failed to create invoice", zap.Error(err))
	}

	fmt.Println("Invoice created")
	fmt.Println("Payment URL:", invoice.PaymentURL)
	fmt.Println("Order ID:", invoice.OrderID)
	fmt.Println("Status:", invoice.Status)
	fmt.Println("Expires At:", invoice.ExpiresAt)

	fmt.Println("\nChecking payment status in 5 seconds...")
	time.Sleep(5 * time.Second)

	status, err := provider.GetStatus(ctx, invoice.OrderID)
	if err != nil {
		log.Fatal("Failed to get status", zap.Error(err))
	}
	fmt.Println("Payment status:", status.Status)
}
