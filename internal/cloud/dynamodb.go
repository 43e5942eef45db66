package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

// DynamoDBClient mirrors home readings into a DynamoDB table keyed by
// homeId (partition) and timestamp in unix milliseconds (sort).
type DynamoDBClient struct {
	svc   *dynamodb.Client
	table string
}

func NewDynamoDBClient(ctx context.Context, region, table string) (*DynamoDBClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &DynamoDBClient{svc: dynamodb.NewFromConfig(cfg), table: table}, nil
}

// readingItem is the DynamoDB structure for a home reading.
type readingItem struct {
	HomeID      string  `dynamodbav:"homeId"`
	Timestamp   int64   `dynamodbav:"timestamp"`
	ReadingID   string  `dynamodbav:"readingId"`
	Clock       string  `dynamodbav:"clock"`
	TotalLoad   float64 `dynamodbav:"totalLoad"`
	Price       float64 `dynamodbav:"price"`
	Occupancy   bool    `dynamodbav:"occupancy"`
	FaultStatus string  `dynamodbav:"faultStatus"`
}

func toItem(r domain.Reading) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(readingItem{
		HomeID:      r.HomeID,
		Timestamp:   r.GeneratedAt.UnixMilli(),
		ReadingID:   r.ID,
		Clock:       r.Timestamp,
		TotalLoad:   r.TotalLoad,
		Price:       r.Price,
		Occupancy:   r.Occupancy,
		FaultStatus: string(r.FaultStatus),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reading: %w", err)
	}
	return item, nil
}

// PutReading stores one reading.
func (c *DynamoDBClient) PutReading(ctx context.Context, r domain.Reading) error {
	item, err := toItem(r)
	if err != nil {
		return err
	}
	_, err = c.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}
	return nil
}
