package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-library-checkout/internal/aws"
)

// claimCondition lets a put through for a new key, an expired key (DynamoDB
// TTL deletion lags), or a key whose last attempt failed.
const claimCondition = "attribute_not_exists(idempotency_key) OR expires_at < :now OR #s = :failed"

// DynamoStore keeps idempotency records in their own DynamoDB table.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration // default TTL window when creating entries
	nowFunc   func() time.Time
}

// NewDynamoStore returns a configured DynamoStore.
// tableName: DynamoDB table name for idempotency entries.
// ttlWindow: default TTL window (e.g., 48*time.Hour)
func NewDynamoStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// CreateIfNotExists implements Store with a conditional PutItem.
func (s *DynamoStore) CreateIfNotExists(ctx context.Context, key string) (bool, error) {
	now := s.nowFunc().UTC()
	rec := Record{
		Key:       key,
		Status:    StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttlWindow).Unix(),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                &s.tableName,
		Item:                     item,
		ConditionExpression:      awsString(claimCondition),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now":    &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
		},
	})
	if err != nil {
		// detect conditional check failure
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}
	return true, nil
}

// Get implements Store.
func (s *DynamoStore) Get(ctx context.Context, key string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            keyOf(key),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	if rec.Expired(s.nowFunc()) {
		return nil, nil
	}
	return &rec, nil
}

// MarkDone sets status to DONE and stores a small response body & status.
func (s *DynamoStore) MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error {
	now := s.nowFunc().UTC()
	return s.update(ctx, key, "mark done", &dyn.UpdateItemInput{
		UpdateExpression: awsString("SET #s = :done, response_body = :rb, response_status = :rs, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":done": &types.AttributeValueMemberS{Value: StatusDone},
			":rb":   &types.AttributeValueMemberS{Value: responseBody},
			":rs":   &types.AttributeValueMemberN{Value: strconv.Itoa(responseStatus)},
			":ua":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
	})
}

// MarkFailed marks the record as FAILED with a note, releasing the key for a retry.
func (s *DynamoStore) MarkFailed(ctx context.Context, key, note string) error {
	now := s.nowFunc().UTC()
	return s.update(ctx, key, "mark failed", &dyn.UpdateItemInput{
		UpdateExpression: awsString("SET #s = :failed, note = :n, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
			":n":      &types.AttributeValueMemberS{Value: note},
			":ua":     &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
	})
}

// update runs an UpdateItem that only applies to an existing key.
func (s *DynamoStore) update(ctx context.Context, key, op string, in *dyn.UpdateItemInput) error {
	in.TableName = &s.tableName
	in.Key = keyOf(key)
	in.ConditionExpression = awsString("attribute_exists(idempotency_key)")
	in.ExpressionAttributeNames = map[string]string{"#s": "status"}
	in.ReturnValues = types.ReturnValueUpdatedNew

	if _, err := s.client.UpdateItem(ctx, in); err != nil {
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return fmt.Errorf("%s %s: %w", op, key, ErrRecordNotFound)
		}
		return fmt.Errorf("update item (%s): %w", op, err)
	}
	return nil
}

func keyOf(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"idempotency_key": &types.AttributeValueMemberS{Value: key},
	}
}

// Helpers
func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }
