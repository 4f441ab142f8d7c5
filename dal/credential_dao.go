package dal

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	dynamo_configuration "github.com/plumewire-social-core/v2/configuration/dynamo"
	tables "github.com/plumewire-social-core/v2/dal/tables/v1"
	publish "github.com/plumewire-social-core/v2/service/publish"
)

// CredentialDao implements publish.CredentialStore over DynamoDB.
type CredentialDao struct {
	svc *dynamodb.DynamoDB
}

func NewCredentialDao(svc *dynamodb.DynamoDB) *CredentialDao {
	return &CredentialDao{svc: svc}
}

func (d *CredentialDao) Create(ctx context.Context, item tables.OauthCredential) error {
	item.UpdatedAtEpochMilli = time.Now().UnixMilli()
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		log.Printf("got error marshalling credential item: %s", err)
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(dynamo_configuration.TABLE_CREDENTIALS),
	}
	_, err = d.svc.PutItemWithContext(ctx, input)
	if err != nil {
		log.Printf("got error calling PutItem credential item: %s", err)
		return err
	}
	return err
}

func (d *CredentialDao) Get(ctx context.Context, userID string) (publish.Credentials, error) {
	result, err := d.svc.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_CREDENTIALS),
		Key: map[string]*dynamodb.AttributeValue{
			"UserID": {
				S: aws.String(userID),
			},
		},
	})
	if err != nil {
		log.Printf("got error calling GetItem credential item: %s", err)
		return publish.Credentials{}, err
	}
	if len(result.Item) == 0 {
		return publish.Credentials{}, publish.ErrNotFound
	}

	item := tables.OauthCredential{}
	err = dynamodbattribute.UnmarshalMap(result.Item, &item)
	if err != nil {
		log.Printf("error unmarshalling credential item: %s", err)
		return publish.Credentials{}, err
	}
	return toCredentials(item), nil
}

func (d *CredentialDao) Update(ctx context.Context, userID string, accessToken string, refreshToken string) error {
	input := &dynamodb.UpdateItemInput{
		Key: map[string]*dynamodb.AttributeValue{
			"UserID": {
				S: aws.String(userID),
			},
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":a": {
				S: aws.String(accessToken),
			},
			":r": {
				S: aws.String(refreshToken),
			},
			":t": {
				N: aws.String(strconv.FormatInt(time.Now().UnixMilli(), 10)),
			},
		},
		TableName:        aws.String(dynamo_configuration.TABLE_CREDENTIALS),
		ReturnValues:     aws.String("NONE"),
		UpdateExpression: aws.String("SET AccessToken = :a, RefreshToken = :r, UpdatedAtEpochMilli = :t"),
	}

	_, err := d.svc.UpdateItemWithContext(ctx, input)
	if err != nil {
		log.Printf("error calling UpdateItem to rotate credential tokens: %s", err)
		return err
	}
	return nil
}

func (d *CredentialDao) Delete(ctx context.Context, userID string) error {
	_, err := d.svc.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_CREDENTIALS),
		Key: map[string]*dynamodb.AttributeValue{
			"UserID": {
				S: aws.String(userID),
			},
		},
	})
	return err
}

func toCredentials(item tables.OauthCredential) publish.Credentials {
	creds := publish.Credentials{
		UserID:       item.UserID,
		AccessToken:  item.AccessToken,
		RefreshToken: item.RefreshToken,
		ClientID:     item.ClientID,
		ClientSecret: item.ClientSecret,
		TokenType:    item.TokenType,
	}
	if item.ExpiresAtEpochSec > 0 {
		creds.ExpiresAt = time.Unix(item.ExpiresAtEpochSec, 0)
	}
	return creds
}
