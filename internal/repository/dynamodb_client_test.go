package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"helpline-responder/internal/domain"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	putErr       error
	lastGetInput *dynamodb.GetItemInput
	lastPutInput *dynamodb.PutItemInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return c
}

func stubID(t *testing.T, id string) {
	t.Helper()
	prev := newID
	newID = func() string { return id }
	t.Cleanup(func() { newID = prev })
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "t")
	require.Error(t, err)
	_, err = New(&fakeDynamo{}, " ")
	require.Error(t, err)
}

func TestAddHelpline_HappyPath(t *testing.T) {
	stubID(t, "hl-1")
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	got, err := c.AddHelpline(context.Background(), domain.Helpline{
		Name: "Sneha", Email: "help@example.org", PhoneNumber: "+910000000000",
	})
	require.NoError(t, err)
	require.Equal(t, "hl-1", got.ID)
	require.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), got.CreatedAt)

	in := db.lastPutInput
	require.NotNil(t, in)
	require.Equal(t, "test-table", *in.TableName)
	require.Equal(t, "attribute_not_exists(PK)", *in.ConditionExpression)
	require.Equal(t, &types.AttributeValueMemberS{Value: "HELPLINE#hl-1"}, in.Item["PK"])
	require.Equal(t, &types.AttributeValueMemberS{Value: "Sneha"}, in.Item["name"])
	require.Equal(t, &types.AttributeValueMemberS{Value: "+910000000000"}, in.Item["phoneNumber"])
}

func TestAddHelpline_RequiresName(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{})
	_, err := c.AddHelpline(context.Background(), domain.Helpline{})
	require.ErrorContains(t, err, "name is required")
}

func TestAddHelpline_PutError(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{putErr: errors.New("ConditionalCheckFailedException")})
	_, err := c.AddHelpline(context.Background(), domain.Helpline{Name: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "AddHelpline")
}

func TestGetHelpline_RoundTrip(t *testing.T) {
	stubID(t, "hl-2")
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	stored, err := c.AddHelpline(context.Background(), domain.Helpline{Name: "Sneha", Email: "e"})
	require.NoError(t, err)

	db.getOut = &dynamodb.GetItemOutput{Item: db.lastPutInput.Item}
	got, found, err := c.GetHelpline(context.Background(), "hl-2")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, stored, got)
	require.Equal(t, &types.AttributeValueMemberS{Value: "HELPLINE#hl-2"}, db.lastGetInput.Key["PK"])
}

func TestGetHelpline_Missing(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{getOut: &dynamodb.GetItemOutput{}})
	_, found, err := c.GetHelpline(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, found)
}

func TestGetHelpline_Errors(t *testing.T) {
	c := mustNewClient(t, &fakeDynamo{getErr: errors.New("boom")})
	_, _, err := c.GetHelpline(context.Background(), "x")
	require.ErrorContains(t, err, "GetHelpline get item")

	c = mustNewClient(t, &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"helplineId": &types.AttributeValueMemberN{Value: "1"},
	}}})
	_, _, err = c.GetHelpline(context.Background(), "x")
	require.ErrorContains(t, err, "not a string")
}
