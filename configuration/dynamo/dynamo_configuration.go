package dynamo

import (
	"log"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	aws_configuration "github.com/plumewire-social-core/v2/configuration"
)

const TABLE_CREDENTIALS = "OauthCredentials"
const TABLE_DRAFTS = "PostDrafts"
const TABLE_GROUPS = "PostGroups"
const TABLE_PROJECTS = "Projects"

func Init() {
	log.Printf("Initializing DynamoDB Tables")

	svc := dynamodb.New(aws_configuration.GetAwsSession())
	createCredentialsTable(svc)
	createDraftsTable(svc)
	createGroupsTable(svc)
	createProjectsTable(svc)
}

// PK: UserID. One credential record per connected user.
func createCredentialsTable(svc *dynamodb.DynamoDB) {
	tableName := TABLE_CREDENTIALS
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("UserID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("UserID"),
				KeyType:       aws.String("HASH"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(tableName),
	}
	createTable(svc, input, tableName)
}

// PK: ProjectID, SK: DraftID. Per-item updates serialize conflicting writes.
func createDraftsTable(svc *dynamodb.DynamoDB) {
	tableName := TABLE_DRAFTS
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("ProjectID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("DraftID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("ProjectID"),
				KeyType:       aws.String("HASH"),
			},
			{
				AttributeName: aws.String("DraftID"),
				KeyType:       aws.String("RANGE"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(tableName),
	}
	createTable(svc, input, tableName)
}

func createGroupsTable(svc *dynamodb.DynamoDB) {
	tableName := TABLE_GROUPS
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("GroupID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("GroupID"),
				KeyType:       aws.String("HASH"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(tableName),
	}
	createTable(svc, input, tableName)
}

func createProjectsTable(svc *dynamodb.DynamoDB) {
	tableName := TABLE_PROJECTS
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("ProjectID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("ProjectID"),
				KeyType:       aws.String("HASH"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(tableName),
	}
	createTable(svc, input, tableName)
}

func createTable(svc *dynamodb.DynamoDB, input *dynamodb.CreateTableInput, tableName string) {
	_, err := svc.CreateTable(input)
	if tableAlreadyExists(err) {
		log.Println("Table already exists", tableName)
	} else if err != nil {
		log.Fatalf("Got error calling CreateTable: %s", err)
	} else {
		log.Println("Created the table", tableName)
	}
}

func tableAlreadyExists(err error) bool {
	if err != nil && strings.Contains(err.Error(), "ResourceInUseException") {
		return true
	}
	return false
}
