package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryS3 is an in-memory S3API
type memoryS3 struct {
	objects map[string][]byte
	putErr  error
}

func newMemoryS3() *memoryS3 {
	return &memoryS3{objects: make(map[string][]byte)}
}

func (m *memoryS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	api := newMemoryS3()
	store := NewS3Store(api, "denoid", "")
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, testSnapshot()))
	assert.Contains(t, api.objects, "denoid/"+DefaultS3Key)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSnapshot(), got)
}

func TestS3Store_PutError(t *testing.T) {
	api := newMemoryS3()
	api.putErr = errors.New("access denied")
	store := NewS3Store(api, "denoid", "custom.json")

	err := store.Save(context.Background(), testSnapshot())
	assert.ErrorContains(t, err, "access denied")
}

func TestDialS3Store_RequiresBucket(t *testing.T) {
	_, err := DialS3Store(context.Background(), S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}
