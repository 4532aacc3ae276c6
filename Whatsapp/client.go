package Whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Client talks to the whatsapp-go REST service
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type apiResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Results json.RawMessage `json:"results"`
}

type Device struct {
	Name   string `json:"name"`
	Device string `json:"device"`
}

// NormalizePhone keeps the digits of a mobile number and adds the India country
// code to bare ten-digit numbers
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	if len(digits) == 10 {
		return "91" + digits
	}
	return digits
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling whatsapp service: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parsing response (status %d): %w", res.StatusCode, err)
	}
	if res.StatusCode >= 300 {
		return &out, fmt.Errorf("whatsapp service returned %d: %s", res.StatusCode, out.Message)
	}
	return &out, nil
}

// Send delivers a text message to a mobile number
func (c *Client) Send(ctx context.Context, phone, message string) error {
	to := NormalizePhone(phone)
	if to == "" {
		return fmt.Errorf("no phone number")
	}
	_, err := c.do(ctx, http.MethodPost, "/send/message", map[string]string{
		"phone":   to,
		"message": message,
	})
	return err
}

// Devices lists the WhatsApp accounts logged in to the service
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	out, err := c.do(ctx, http.MethodGet, "/app/devices", nil)
	if err != nil {
		return nil, err
	}
	var devices []Device
	if len(out.Results) > 0 && string(out.Results) != "null" {
		if err := json.Unmarshal(out.Results, &devices); err != nil {
			return nil, fmt.Errorf("parsing devices: %w", err)
		}
	}
	return devices, nil
}

// StatusHandler reports whether reminders can be sent over WhatsApp
func (c *Client) StatusHandler(ctx *fiber.Ctx) error {
	devices, err := c.Devices(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to check login status"})
	}
	return ctx.JSON(fiber.Map{
		"logged_in": len(devices) > 0,
		"devices":   devices,
	})
}
