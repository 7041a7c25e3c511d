package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/apperr"
	"github.com/nexcodes/softec-25-sub000/internal/config"
	"github.com/nexcodes/softec-25-sub000/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	input   *s3.PutObjectInput
	expires time.Duration
	err     error
}

func (p *fakePresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.input = params
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	p.expires = opts.Expires
	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.example.com/" + aws.ToString(params.Key) + "?X-Amz-Signature=sig",
		Method: http.MethodPut,
	}, nil
}

func newMediaService(f *fixture, presigner Presigner) *MediaService {
	return NewMediaService(f.media, f.crimes, f.users, presigner, config.AWSConfig{
		Region:   "eu-west-1",
		S3Bucket: "crime-media",
	})
}

func TestCreateUploadURL(t *testing.T) {
	f := newFixture(t)
	presigner := &fakePresigner{}
	svc := newMediaService(f, presigner)
	ctx := context.Background()

	owner := f.user(t, models.RoleUser)
	crime := f.crime(t, owner, true)

	resp, err := svc.CreateUploadURL(ctx, owner.ID, crime.ID, UploadRequest{
		Filename:    "Evidence.JPG",
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.ObjectKey, "crimes/"+crime.ID+"/"+resp.MediaID))
	assert.True(t, strings.HasSuffix(resp.ObjectKey, ".jpg"))
	assert.Equal(t, "https://crime-media.s3.eu-west-1.amazonaws.com/"+resp.ObjectKey, resp.URL)
	assert.Contains(t, resp.UploadURL, resp.ObjectKey)
	assert.Equal(t, 300, resp.ExpiresIn)

	require.NotNil(t, presigner.input)
	assert.Equal(t, "crime-media", aws.ToString(presigner.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(presigner.input.ContentType))
	assert.Equal(t, 5*time.Minute, presigner.expires)
}

func TestCreateUploadURL_PublicURL(t *testing.T) {
	f := newFixture(t)
	svc := NewMediaService(f.media, f.crimes, f.users, &fakePresigner{}, config.AWSConfig{
		S3Bucket:  "crime-media",
		PublicURL: "https://cdn.example.com/",
	})

	crime := f.crime(t, nil, true)
	resp, err := svc.CreateUploadURL(context.Background(), "", crime.ID, UploadRequest{ContentType: "video/mp4"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+resp.ObjectKey, resp.URL)
	assert.Equal(t, "crimes/"+crime.ID+"/"+resp.MediaID, resp.ObjectKey)
}

func TestCreateUploadURL_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, models.RoleUser)
	other := f.user(t, models.RoleUser)
	crime := f.crime(t, owner, true)

	svc := newMediaService(f, &fakePresigner{})

	_, err := svc.CreateUploadURL(ctx, owner.ID, crime.ID, UploadRequest{Filename: "a.jpg"})
	assertField(t, err, "content_type")

	_, err = svc.CreateUploadURL(ctx, other.ID, crime.ID, UploadRequest{ContentType: "image/png"})
	assertKind(t, err, apperr.KindForbidden)

	_, err = svc.CreateUploadURL(ctx, "", crime.ID, UploadRequest{ContentType: "image/png"})
	assertKind(t, err, apperr.KindUnauthorized)

	failing := newMediaService(f, &fakePresigner{err: errors.New("signer down")})
	_, err = failing.CreateUploadURL(ctx, owner.ID, crime.ID, UploadRequest{ContentType: "image/png"})
	assertKind(t, err, apperr.KindInternal)
}

func upload(t *testing.T, svc *MediaService, actorID, crimeID, filename, contentType string) *UploadResponse {
	t.Helper()
	resp, err := svc.CreateUploadURL(context.Background(), actorID, crimeID, UploadRequest{
		Filename:    filename,
		ContentType: contentType,
	})
	require.NoError(t, err)
	return resp
}

func TestAttachMedia(t *testing.T) {
	f := newFixture(t)
	svc := newMediaService(f, &fakePresigner{})
	ctx := context.Background()

	owner := f.user(t, models.RoleUser)
	admin := f.user(t, models.RoleAdmin)
	crime := f.crime(t, owner, true)
	anonymous := f.crime(t, nil, true)

	image := upload(t, svc, owner.ID, crime.ID, "scene.png", "image/png")
	media, err := svc.AttachMedia(ctx, owner.ID, crime.ID, AttachMediaRequest{
		ObjectKey:   image.ObjectKey,
		ContentType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, image.MediaID, media.ID)
	assert.Equal(t, image.URL, media.URL)
	assert.Equal(t, models.MediaImage, media.Type)

	clip := upload(t, svc, admin.ID, crime.ID, "clip.mp4", "video/mp4")
	media, err = svc.AttachMedia(ctx, admin.ID, crime.ID, AttachMediaRequest{ObjectKey: clip.ObjectKey, URL: clip.URL})
	require.NoError(t, err)
	assert.Equal(t, models.MediaVideo, media.Type)

	explicit := models.MediaOther
	photo := upload(t, svc, "", anonymous.ID, "p.jpg", "image/jpeg")
	media, err = svc.AttachMedia(ctx, "", anonymous.ID, AttachMediaRequest{ObjectKey: photo.ObjectKey, Type: &explicit})
	require.NoError(t, err)
	assert.Equal(t, models.MediaOther, media.Type)

	list, err := svc.ListMedia(ctx, "", crime.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAttachMedia_Errors(t *testing.T) {
	f := newFixture(t)
	svc := newMediaService(f, &fakePresigner{})
	ctx := context.Background()

	owner := f.user(t, models.RoleUser)
	other := f.user(t, models.RoleUser)
	crime := f.crime(t, owner, true)
	elsewhere := f.crime(t, nil, true)

	pending := upload(t, svc, owner.ID, crime.ID, "a.jpg", "image/jpeg")

	_, err := svc.AttachMedia(ctx, other.ID, crime.ID, AttachMediaRequest{ObjectKey: pending.ObjectKey})
	assertKind(t, err, apperr.KindForbidden)

	_, err = svc.AttachMedia(ctx, owner.ID, crime.ID, AttachMediaRequest{})
	assertField(t, err, "object_key")

	_, err = svc.AttachMedia(ctx, owner.ID, crime.ID, AttachMediaRequest{ObjectKey: pending.ObjectKey, URL: "not a url"})
	assertField(t, err, "url")

	_, err = svc.AttachMedia(ctx, owner.ID, crime.ID, AttachMediaRequest{ObjectKey: pending.ObjectKey, URL: "https://elsewhere.example.com/x.jpg"})
	assertField(t, err, "url")

	bogus := models.MediaType("HOLOGRAM")
	_, err = svc.AttachMedia(ctx, owner.ID, crime.ID, AttachMediaRequest{ObjectKey: pending.ObjectKey, Type: &bogus})
	assertField(t, err, "type")

	// keys must come from an upload URL issued for this crime
	foreign := upload(t, svc, "", elsewhere.ID, "b.jpg", "image/jpeg")
	_, err = svc.AttachMedia(ctx, owner.ID, crime.ID, AttachMediaRequest{ObjectKey: foreign.ObjectKey})
	assertField(t, err, "object_key")

	_, err = svc.AttachMedia(ctx, "", elsewhere.ID, AttachMediaRequest{ObjectKey: "crimes/" + elsewhere.ID + "/" + uuid.NewString() + ".jpg"})
	assertField(t, err, "object_key")

	// each upload attaches once
	_, err = svc.AttachMedia(ctx, owner.ID, crime.ID, AttachMediaRequest{ObjectKey: pending.ObjectKey})
	require.NoError(t, err)
	_, err = svc.AttachMedia(ctx, owner.ID, crime.ID, AttachMediaRequest{ObjectKey: pending.ObjectKey})
	assertKind(t, err, apperr.KindConflict)
}

func TestAttachMedia_UploadWindow(t *testing.T) {
	f := newFixture(t)
	svc := newMediaService(f, &fakePresigner{})
	ctx := context.Background()

	crime := f.crime(t, nil, true)
	stale := upload(t, svc, "", crime.ID, "old.jpg", "image/jpeg")

	svc.now = func() time.Time { return time.Now().Add(attachWindow + time.Minute) }
	_, err := svc.AttachMedia(ctx, "", crime.ID, AttachMediaRequest{ObjectKey: stale.ObjectKey})
	assertField(t, err, "object_key")

	svc.now = time.Now
	_, err = svc.AttachMedia(ctx, "", crime.ID, AttachMediaRequest{ObjectKey: stale.ObjectKey})
	require.NoError(t, err)
}
