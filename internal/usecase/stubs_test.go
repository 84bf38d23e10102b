package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/example/facegate/internal/faceengine"
	"github.com/example/facegate/internal/repository"
)

type stubRepository struct {
	usersByQR    map[string]*repository.User
	nextID       uint
	createErr    error
	createdUsers []*repository.User
	findQRCalls  int

	savedEvents  []*repository.AccessEvent
	saveEventErr error

	listedEvents []*repository.AccessEvent
	listStart    *time.Time
	listEnd      *time.Time
	listStatus   string

	eventByID *repository.AccessEvent

	adminHash string
}

func (s *stubRepository) CreateUser(ctx context.Context, user *repository.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	user.ID = s.nextID
	user.QRCode = repository.QRCodeForUserID(user.ID)
	s.createdUsers = append(s.createdUsers, user)
	if s.usersByQR == nil {
		s.usersByQR = map[string]*repository.User{}
	}
	s.usersByQR[user.QRCode] = user
	return nil
}

func (s *stubRepository) FindUserByQR(ctx context.Context, qrCode string) (*repository.User, error) {
	s.findQRCalls++
	if user, ok := s.usersByQR[qrCode]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepository) FindUserByID(ctx context.Context, id uint) (*repository.User, error) {
	for _, user := range s.usersByQR {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepository) ListUsers(ctx context.Context) ([]*repository.User, error) {
	users := make([]*repository.User, 0, len(s.usersByQR))
	for _, user := range s.usersByQR {
		users = append(users, user)
	}
	return users, nil
}

func (s *stubRepository) SaveEvent(ctx context.Context, event *repository.AccessEvent) error {
	if s.saveEventErr != nil {
		return s.saveEventErr
	}
	s.savedEvents = append(s.savedEvents, event)
	return nil
}

func (s *stubRepository) ListEvents(ctx context.Context, start, end *time.Time, status string) ([]*repository.AccessEvent, error) {
	s.listStart = start
	s.listEnd = end
	s.listStatus = status
	return s.listedEvents, nil
}

func (s *stubRepository) FindEventByID(ctx context.Context, id uint) (*repository.AccessEvent, error) {
	if s.eventByID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.eventByID, nil
}

func (s *stubRepository) GetAdminPasswordHash(ctx context.Context) (string, error) {
	return s.adminHash, nil
}

func (s *stubRepository) SetAdminPasswordHash(ctx context.Context, hash string) error {
	s.adminHash = hash
	return nil
}

type stubCache struct {
	setErrs   []error
	getErrs   []error
	getValues []string
	setKeys   []string
	setValues []string
	getKeys   []string
}

func (s *stubCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	s.setKeys = append(s.setKeys, key)
	s.setValues = append(s.setValues, fmt.Sprint(value))
	if len(s.setErrs) == 0 {
		return nil
	}
	err := s.setErrs[0]
	s.setErrs = s.setErrs[1:]
	return err
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	s.getKeys = append(s.getKeys, key)
	var value string
	if len(s.getValues) > 0 {
		value = s.getValues[0]
		s.getValues = s.getValues[1:]
	}
	var err error
	if len(s.getErrs) > 0 {
		err = s.getErrs[0]
		s.getErrs = s.getErrs[1:]
	}
	return value, err
}

// stubProvider scripts per-call landmark results and a single embedding
// response.
type stubProvider struct {
	landmarks     []*faceengine.Landmarks
	landmarkErrs  []error
	landmarkCalls int

	embedding      []float64
	embeddingErr   error
	embeddingCalls int
}

func (s *stubProvider) Landmarks(ctx context.Context, image []byte) (*faceengine.Landmarks, error) {
	i := s.landmarkCalls
	s.landmarkCalls++
	var lm *faceengine.Landmarks
	if i < len(s.landmarks) {
		lm = s.landmarks[i]
	}
	var err error
	if i < len(s.landmarkErrs) {
		err = s.landmarkErrs[i]
	}
	return lm, err
}

func (s *stubProvider) Embedding(ctx context.Context, image []byte) ([]float64, error) {
	s.embeddingCalls++
	if s.embeddingErr != nil {
		return nil, s.embeddingErr
	}
	return s.embedding, nil
}

// landmarksWithEAR builds an eye contour whose aspect ratio equals ear:
// horizontal span 1, both vertical pairs of height ear.
func landmarksWithEAR(ear float64) *faceengine.Landmarks {
	eye := [6]faceengine.Point{
		{X: 0, Y: 0},
		{X: 0.3, Y: 0},
		{X: 0.6, Y: 0},
		{X: 1, Y: 0},
		{X: 0.6, Y: ear},
		{X: 0.3, Y: ear},
	}
	return &faceengine.Landmarks{LeftEye: eye, RightEye: eye}
}

func b64Frame(content string) string {
	return base64.StdEncoding.EncodeToString([]byte(content))
}
