package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/highwaynet/ucc-service/internal/config"
	"github.com/highwaynet/ucc-service/internal/model"
)

type fakeDocumentStore struct {
	docs      map[int64]*model.Document
	nextID    int64
	insertErr error
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: map[int64]*model.Document{}}
}

func (f *fakeDocumentStore) Insert(_ context.Context, doc *model.Document) (*model.Document, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	saved := *doc
	saved.ID = f.nextID
	f.docs[saved.ID] = &saved
	return &saved, nil
}

func (f *fakeDocumentStore) GetByID(_ context.Context, id int64) (*model.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return doc, nil
}

func (f *fakeDocumentStore) ListByContract(_ context.Context, contractID int64) ([]model.Document, error) {
	var docs []model.Document
	for _, doc := range f.docs {
		if doc.ContractID == contractID && !doc.IsDeleted {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (f *fakeDocumentStore) SoftDelete(_ context.Context, id int64) error {
	if doc, ok := f.docs[id]; ok {
		doc.IsDeleted = true
	}
	return nil
}

type fakeObjectStore struct {
	putKeys    []string
	deleted    []string
	putErr     error
	deleteErr  error
	presignErr error
}

func (f *fakeObjectStore) Put(_ context.Context, key string, _ io.Reader, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.putKeys = append(f.putKeys, key)
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://signed.example/" + key, nil
}

func (f *fakeObjectStore) ObjectURL(key string) string {
	return "https://bucket.example/" + key
}

func newDocumentService(docs *fakeDocumentStore, objects *fakeObjectStore, contracts *fakeDraftStore) *DocumentService {
	cfg := &config.Config{S3: config.S3Config{MainFolder: "ucc", SubFolder: "documents"}}
	return NewDocumentService(docs, objects, contracts, &fakeAuditStore{}, cfg, zerolog.Nop())
}

func TestUploadCreatesDraftWhenMissing(t *testing.T) {
	contracts := newFakeDraftStore()
	docs := newFakeDocumentStore()
	objects := &fakeObjectStore{}
	svc := newDocumentService(docs, objects, contracts)

	result, err := svc.Upload(context.Background(), model.Principal{UserID: 7}, UploadInput{
		StretchIDs:   []string{"S1"},
		DocumentType: "DPR",
		FileName:     "report.pdf",
		Body:         strings.NewReader("content"),
	})
	require.NoError(t, err)
	assert.NotZero(t, result.DraftID)
	assert.Equal(t, result.DraftID, result.Document.ContractID)

	require.Len(t, objects.putKeys, 1)
	assert.True(t, strings.HasPrefix(objects.putKeys[0], "ucc/documents/"))
	assert.True(t, strings.HasSuffix(objects.putKeys[0], "-report.pdf"))
	assert.Equal(t, "https://bucket.example/"+objects.putKeys[0], result.Document.DocumentPath)
}

func TestUploadMapsObjectStoreFailure(t *testing.T) {
	contracts := newFakeDraftStore()
	contracts.contracts[5] = &model.Contract{ID: 5, Status: model.StatusDraft}
	objects := &fakeObjectStore{putErr: errors.New("connection refused")}
	svc := newDocumentService(newFakeDocumentStore(), objects, contracts)

	_, err := svc.Upload(context.Background(), model.Principal{UserID: 7}, UploadInput{
		DraftID:      5,
		DocumentType: "DPR",
		FileName:     "report.pdf",
		Body:         strings.NewReader("content"),
	})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestUploadCleansUpOrphanedObject(t *testing.T) {
	contracts := newFakeDraftStore()
	contracts.contracts[5] = &model.Contract{ID: 5, Status: model.StatusDraft}
	docs := newFakeDocumentStore()
	docs.insertErr = errors.New("insert failed")
	objects := &fakeObjectStore{}
	svc := newDocumentService(docs, objects, contracts)

	_, err := svc.Upload(context.Background(), model.Principal{UserID: 7}, UploadInput{
		DraftID:      5,
		DocumentType: "DPR",
		FileName:     "report.pdf",
		Body:         strings.NewReader("content"),
	})
	require.Error(t, err)
	require.Len(t, objects.putKeys, 1)
	assert.Equal(t, objects.putKeys, objects.deleted)
}

func TestUploadRejectsClosedContract(t *testing.T) {
	contracts := newFakeDraftStore()
	contracts.contracts[5] = &model.Contract{ID: 5, Status: model.StatusApproved}
	svc := newDocumentService(newFakeDocumentStore(), &fakeObjectStore{}, contracts)

	_, err := svc.Upload(context.Background(), model.Principal{UserID: 7}, UploadInput{
		DraftID:      5,
		DocumentType: "DPR",
		FileName:     "report.pdf",
		Body:         strings.NewReader("content"),
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteIsIdempotent(t *testing.T) {
	contracts := newFakeDraftStore()
	docs := newFakeDocumentStore()
	docs.nextID = 1
	docs.docs[1] = &model.Document{ID: 1, ContractID: 5, KeyName: "ucc/documents/x-report.pdf"}
	objects := &fakeObjectStore{}
	svc := newDocumentService(docs, objects, contracts)

	require.NoError(t, svc.Delete(context.Background(), model.Principal{UserID: 7}, 1))
	assert.True(t, docs.docs[1].IsDeleted)
	assert.Len(t, objects.deleted, 1)

	// second delete is a no-op
	require.NoError(t, svc.Delete(context.Background(), model.Principal{UserID: 7}, 1))
	assert.Len(t, objects.deleted, 1)
}

func TestDownloadURLDeletedDocument(t *testing.T) {
	docs := newFakeDocumentStore()
	docs.docs[1] = &model.Document{ID: 1, IsDeleted: true}
	svc := newDocumentService(docs, &fakeObjectStore{}, newFakeDraftStore())

	_, err := svc.DownloadURL(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadURLPresigns(t *testing.T) {
	docs := newFakeDocumentStore()
	docs.docs[1] = &model.Document{ID: 1, KeyName: "ucc/documents/x-report.pdf"}
	svc := newDocumentService(docs, &fakeObjectStore{}, newFakeDraftStore())

	url, err := svc.DownloadURL(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/ucc/documents/x-report.pdf", url)
}
