package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"helpline-responder/internal/domain"
)

const skMeta = "META#"

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client wraps a DynamoDB table holding the helpline directory.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

// helplinePK returns the DynamoDB partition key for a helpline.
func helplinePK(id string) string {
	return "HELPLINE#" + id
}

// AddHelpline stores h under a freshly generated id and returns the stored record.
func (c *Client) AddHelpline(ctx context.Context, h domain.Helpline) (domain.Helpline, error) {
	if strings.TrimSpace(h.Name) == "" {
		return domain.Helpline{}, errors.New("repository: AddHelpline: name is required")
	}
	h.ID = newID()
	h.CreatedAt = c.now().UTC()

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                helplineItem(h),
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return domain.Helpline{}, fmt.Errorf("repository: AddHelpline: %w", err)
	}
	return h, nil
}

// GetHelpline reads one helpline; a missing record reports found=false.
func (c *Client) GetHelpline(ctx context.Context, id string) (domain.Helpline, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: helplinePK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
	})
	if err != nil {
		return domain.Helpline{}, false, fmt.Errorf("repository: GetHelpline get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Helpline{}, false, nil
	}
	h, err := itemToHelpline(out.Item)
	if err != nil {
		return domain.Helpline{}, false, fmt.Errorf("repository: GetHelpline decode: %w", err)
	}
	return h, true, nil
}

func helplineItem(h domain.Helpline) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":          &types.AttributeValueMemberS{Value: helplinePK(h.ID)},
		"SK":          &types.AttributeValueMemberS{Value: skMeta},
		"helplineId":  &types.AttributeValueMemberS{Value: h.ID},
		"name":        &types.AttributeValueMemberS{Value: h.Name},
		"email":       &types.AttributeValueMemberS{Value: h.Email},
		"phoneNumber": &types.AttributeValueMemberS{Value: h.PhoneNumber},
		"createdAt":   &types.AttributeValueMemberS{Value: h.CreatedAt.Format(time.RFC3339)},
	}
}

// itemToHelpline converts a DynamoDB attribute map to a Helpline.
func itemToHelpline(item map[string]types.AttributeValue) (domain.Helpline, error) {
	id, err := strAttr(item, "helplineId")
	if err != nil {
		return domain.Helpline{}, err
	}
	name, err := strAttr(item, "name")
	if err != nil {
		return domain.Helpline{}, err
	}
	email, _ := strAttr(item, "email")       // optional
	phone, _ := strAttr(item, "phoneNumber") // optional

	h := domain.Helpline{ID: id, Name: name, Email: email, PhoneNumber: phone}
	if raw, err := strAttr(item, "createdAt"); err == nil {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.Helpline{}, fmt.Errorf("repository: parse createdAt: %w", err)
		}
		h.CreatedAt = ts
	}
	return h, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

var newID = func() string {
	return uuid.NewString()
}
