package services

import (
	"context"
	"mime/multipart"
	"sync"
	"time"

	"github.com/javajoker/ecommerce-backend/internal/models"
)

// async email delivery is polled with these
const (
	waitFor = time.Second
	tick    = 10 * time.Millisecond
)

type sentEmail struct {
	kind string
	to   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
	fail error
}

func (n *fakeNotifier) record(kind, to string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEmail{kind: kind, to: to})
	return n.fail
}

func (n *fakeNotifier) SendWelcomeEmail(user *models.User) error {
	return n.record("welcome", user.Email)
}

func (n *fakeNotifier) SendPasswordResetEmail(user *models.User, resetToken string) error {
	return n.record("reset:"+resetToken, user.Email)
}

func (n *fakeNotifier) SendOrderConfirmation(user *models.User, order *models.Order) error {
	return n.record("order:"+order.OrderNumber, user.Email)
}

func (n *fakeNotifier) SendOrderStatusUpdate(user *models.User, order *models.Order) error {
	return n.record("status:"+string(order.Status), user.Email)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *fakeNotifier) lastKind() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return ""
	}
	return n.sent[len(n.sent)-1].kind
}

type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	deleted []string
}

func (s *fakeStorage) UploadFile(ctx context.Context, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "https://cdn.test/" + options.Folder + "/" + header.Filename
	s.uploads = append(s.uploads, url)
	return &UploadResult{URL: url, Key: options.Folder + "/" + header.Filename, Size: header.Size, MimeType: "image/png"}, nil
}

func (s *fakeStorage) DeleteFileByURL(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

func (s *fakeStorage) deletedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
