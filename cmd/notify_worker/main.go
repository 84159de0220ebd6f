package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/venuepass/venuepass/config"
	"github.com/venuepass/venuepass/pkg/helpers"
	"github.com/venuepass/venuepass/pkg/mailer"
)

// Worker that drains the notification queue. Each job may carry an email
// part (sent through Mailgun) and a push part (sent through the Expo
// gateway); either may be empty.

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if !cfg.NotifySendEnabled {
		log.Println("NOTIFY_SEND_ENABLED=false; notify worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotifyQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	sub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer sub.Close()

	msgs, err := sub.Consume()
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	var mg *mailer.Mailgun
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" && cfg.MailgunSender != "" {
		mg = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		log.Println("Mailgun not configured; email parts will be skipped")
	}

	pusher := &expoPusher{url: cfg.ExpoPushURL, client: &http.Client{Timeout: 10 * time.Second}}
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var job mailer.Job
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}

			failed := false
			if job.To != "" && mg != nil {
				c, cancel := context.WithTimeout(ctx, 15*time.Second)
				if err := mg.Send(c, job); err != nil {
					log.Printf("mailgun send to %s: %v", job.To, err)
					failed = true
				}
				cancel()
			}
			if job.PushToken != "" {
				if err := pusher.Send(ctx, job); err != nil {
					log.Printf("expo push: %v", err)
					failed = true
				}
			}

			if failed {
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("notify worker consuming %q", cfg.RabbitMQNotifyQueue)
	select {
	case <-stop:
		log.Println("shutting down notify worker")
	case <-done:
		log.Println("delivery channel closed")
	}
}

type expoPusher struct {
	url    string
	client *http.Client
}

type expoMessage struct {
	To    string `json:"to"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

func (p *expoPusher) Send(ctx context.Context, job mailer.Job) error {
	payload, err := json.Marshal(expoMessage{To: job.PushToken, Title: job.PushTitle, Body: job.PushBody})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("expo push status %d: %s", resp.StatusCode, body)
	}
	return nil
}
