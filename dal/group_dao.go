package dal

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	dynamo_configuration "github.com/plumewire-social-core/v2/configuration/dynamo"
	tables "github.com/plumewire-social-core/v2/dal/tables/v1"
	publish "github.com/plumewire-social-core/v2/service/publish"
)

// GroupDao implements publish.GroupStore over DynamoDB.
type GroupDao struct {
	svc *dynamodb.DynamoDB
}

func NewGroupDao(svc *dynamodb.DynamoDB) *GroupDao {
	return &GroupDao{svc: svc}
}

func (d *GroupDao) Create(ctx context.Context, item tables.PostGroup) error {
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		log.Printf("got error marshalling group item: %s", err)
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(dynamo_configuration.TABLE_GROUPS),
	}
	_, err = d.svc.PutItemWithContext(ctx, input)
	if err != nil {
		log.Printf("got error calling PutItem group item: %s", err)
		return err
	}
	return err
}

func (d *GroupDao) Get(ctx context.Context, groupID string) (publish.PostGroup, error) {
	result, err := d.svc.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_GROUPS),
		Key: map[string]*dynamodb.AttributeValue{
			"GroupID": {
				S: aws.String(groupID),
			},
		},
	})
	if err != nil {
		log.Printf("got error calling GetItem group item: %s", err)
		return publish.PostGroup{}, err
	}
	if len(result.Item) == 0 {
		return publish.PostGroup{}, publish.ErrNotFound
	}

	item := tables.PostGroup{}
	err = dynamodbattribute.UnmarshalMap(result.Item, &item)
	if err != nil {
		log.Printf("error unmarshalling group item: %s", err)
		return publish.PostGroup{}, err
	}
	return publish.PostGroup{GroupID: item.GroupID, IsEnabled: item.IsEnabled}, nil
}
