package store

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-library-checkout/internal/aws"
)

// collectionItem is the shape persisted in the records DynamoDB table: one
// item per collection, keyed by name.
type collectionItem struct {
	Collection string    `dynamodbav:"collection"` // PK
	Data       string    `dynamodbav:"data"`
	UpdatedAt  time.Time `dynamodbav:"updated_at"`
}

// DynamoStore keeps collections as items of a DynamoDB table.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

var _ Store = &DynamoStore{} // DynamoStore is-a Store.

// NewDynamoStore creates a DynamoStore over tableName.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Load fetches the collection item.
func (s *DynamoStore) Load(ctx context.Context, collection string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"collection": &types.AttributeValueMemberS{Value: collection},
		},
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, errors.WithMessage(err, "get item")
	}
	if len(out.Item) == 0 {
		return nil, ErrNotExist
	}
	var item collectionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, errors.WithMessage(err, "unmarshal collection item")
	}
	return []byte(item.Data), nil
}

// Save overwrites the collection item.
func (s *DynamoStore) Save(ctx context.Context, collection string, data []byte) error {
	item, err := attributevalue.MarshalMap(collectionItem{
		Collection: collection,
		Data:       string(data),
		UpdatedAt:  s.nowFunc().UTC(),
	})
	if err != nil {
		return errors.WithMessage(err, "marshal collection item")
	}
	if _, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}); err != nil {
		return errors.WithMessage(err, "put item")
	}
	return nil
}

func awsBool(b bool) *bool { return &b }
