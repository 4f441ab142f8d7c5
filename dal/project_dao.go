package dal

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	dynamo_configuration "github.com/plumewire-social-core/v2/configuration/dynamo"
	tables "github.com/plumewire-social-core/v2/dal/tables/v1"
	publish "github.com/plumewire-social-core/v2/service/publish"
)

// ProjectDao implements publish.AccessChecker by membership lookup on the
// project record.
type ProjectDao struct {
	svc *dynamodb.DynamoDB
}

func NewProjectDao(svc *dynamodb.DynamoDB) *ProjectDao {
	return &ProjectDao{svc: svc}
}

func (d *ProjectDao) Create(ctx context.Context, item tables.Project) error {
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		log.Printf("got error marshalling project item: %s", err)
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(dynamo_configuration.TABLE_PROJECTS),
	}
	_, err = d.svc.PutItemWithContext(ctx, input)
	if err != nil {
		log.Printf("got error calling PutItem project item: %s", err)
		return err
	}
	return err
}

func (d *ProjectDao) VerifyAccess(ctx context.Context, userID string, projectID string) (publish.AccessDecision, error) {
	result, err := d.svc.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_PROJECTS),
		Key: map[string]*dynamodb.AttributeValue{
			"ProjectID": {
				S: aws.String(projectID),
			},
		},
	})
	if err != nil {
		log.Printf("got error calling GetItem project item: %s", err)
		return publish.AccessDecision{}, err
	}
	if len(result.Item) == 0 {
		return publish.AccessDecision{
			Reason:     "project not found",
			StatusCode: http.StatusNotFound,
		}, nil
	}

	item := tables.Project{}
	err = dynamodbattribute.UnmarshalMap(result.Item, &item)
	if err != nil {
		log.Printf("error unmarshalling project item: %s", err)
		return publish.AccessDecision{}, err
	}

	if item.OwnerUserID == userID {
		return publish.AccessDecision{Authorized: true}, nil
	}
	for _, memberID := range item.MemberIDs {
		if memberID == userID {
			return publish.AccessDecision{Authorized: true}, nil
		}
	}
	return publish.AccessDecision{
		Reason:     "user is not a member of this project",
		StatusCode: http.StatusForbidden,
	}, nil
}
