// Command realapi walks through one payment against the Midtrans sandbox:
// it opens a Snap invoice, waits while the tester pays in the browser or the
// simulator, then queries the status API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"indo-payment/internal/config"
	"indo-payment/internal/logger"
	"indo-payment/internal/payment"
	"indo-payment/internal/payment/midtrans"
	"indo-payment/internal/utils"

	"go.uber.org/zap"
)

const simulatorURL = "https://simulator.sandbox.midtrans.com/"

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if cfg.MidtransServerKey == "" {
		fmt.Fprintln(os.Stderr, "Error: MIDTRANS_SERVER_KEY not found in environment or .env")
		fmt.Fprintln(os.Stderr, "\nCreate a .env file containing:")
		fmt.Fprintln(os.Stderr, "MIDTRANS_SERVER_KEY=SB-Mid-server-xxxxx")
		os.Exit(1)
	}

	if cfg.MidtransEnabledPayments == nil {
		cfg.MidtransEnabledPayments = []string{"gopay", "qris", "bank_transfer", "bca_va", "bni_va", "bri_va"}
	}

	provider, err := midtrans.New(cfg.Midtrans())
	if err != nil {
		logger.L().Fatal("Failed to configure midtrans", zap.Error(err))
	}

	rule()
	fmt.Println("Indo Payment - Real API Test")
	rule()
	fmt.Println("\nEnvironment:", provider.Environment())
	fmt.Println("Server Key:", mask(cfg.MidtransServerKey))

	if err := run(context.Background(), provider, os.Stdin); err != nil {
		logger.L().Error("Real API test failed", zap.Error(err))
		if apiErr, ok := payment.AsAPIError(err); ok {
			fmt.Fprintf(os.Stderr, "\nAPI error %d: %s\n", apiErr.StatusCode, apiErr.Message)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, provider *midtrans.Provider, stdin io.Reader) error {
	orderID := utils.GenerateOrderID("TEST")
	ctx = logger.WithOrderID(ctx, orderID)

	fmt.Println("\n[1/3] Creating invoice...")
	fmt.Println("Order ID:", orderID)

	invoice, err := provider.CreateInvoice(ctx, payment.CreateInvoiceParams{
		Amount:   50000,
		Currency: payment.CurrencyIDR,
		OrderID:  orderID,
		Customer: payment.CustomerInfo{
			Name:  "Budi Santoso",
			Email: "budi@example.com",
			Phone: "081234567890",
		},
		Items: []payment.InvoiceItem{
			{ID: "ITEM-001", Name: "Test Product", Price: 50000, Quantity: 1},
		},
		ExpiresIn: 60,
	})
	if err != nil {
		return err
	}

	fmt.Println("\n[2/3] Invoice created")
	dash()
	fmt.Println("Invoice ID:", invoice.ID)
	fmt.Println("Order ID:", invoice.OrderID)
	fmt.Println("Amount:", utils.FormatIDR(invoice.Amount))
	fmt.Println("Status:", invoice.Status)
	fmt.Println("Expires At:", invoice.ExpiresAt.Local().Format(time.RFC1123))
	fmt.Println("\nPayment URL:")
	fmt.Println(invoice.PaymentURL)
	dash()

	fmt.Println("\n[3/3] Complete the payment in your browser")
	fmt.Println("     Midtrans simulator:", simulatorURL)
	fmt.Print("\nPress ENTER once paid...")
	_, _ = bufio.NewReader(stdin).ReadString('\n')

	fmt.Println("\nChecking payment status...")

	status, err := provider.GetStatus(ctx, orderID)
	if err != nil {
		return err
	}

	fmt.Println("\nPayment Status:")
	dash()
	fmt.Println("Transaction ID:", orDefault(status.ID, "(none yet)"))
	fmt.Println("Order ID:", status.OrderID)
	fmt.Println("Status:", status.Status)
	if status.Amount > 0 {
		fmt.Println("Amount:", utils.FormatIDR(int64(status.Amount)))
	} else {
		fmt.Println("Amount: (none yet)")
	}
	if status.PaymentMethod != "" {
		fmt.Println("Payment Method:", status.PaymentMethod)
	}
	if status.PaidAt != nil {
		fmt.Println("Paid At:", status.PaidAt.Local().Format(time.RFC1123))
	}
	dash()

	fmt.Println("\nDone.")
	return nil
}

func rule() { fmt.Println(strings.Repeat("=", 50)) }
func dash() { fmt.Println(strings.Repeat("-", 50)) }

func mask(key string) string {
	if len(key) <= 20 {
		return key[:len(key)/2] + "..."
	}
	return key[:20] + "..."
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
