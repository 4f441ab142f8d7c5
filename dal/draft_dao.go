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

// DraftDao implements publish.DraftStore over DynamoDB. Drafts are keyed by
// ProjectID + DraftID.
type DraftDao struct {
	svc *dynamodb.DynamoDB
}

func NewDraftDao(svc *dynamodb.DynamoDB) *DraftDao {
	return &DraftDao{svc: svc}
}

func (d *DraftDao) Create(ctx context.Context, item tables.PostDraft) error {
	if item.PostStatus == "" {
		item.PostStatus = tables.DRAFT
	}
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		log.Printf("got error marshalling draft item: %s", err)
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(dynamo_configuration.TABLE_DRAFTS),
	}
	_, err = d.svc.PutItemWithContext(ctx, input)
	if err != nil {
		log.Printf("got error calling PutItem draft item: %s", err)
		return err
	}
	return err
}

func (d *DraftDao) Get(ctx context.Context, projectID string, draftID string) (publish.PostDraft, error) {
	result, err := d.svc.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_DRAFTS),
		Key: map[string]*dynamodb.AttributeValue{
			"ProjectID": {
				S: aws.String(projectID),
			},
			"DraftID": {
				S: aws.String(draftID),
			},
		},
	})
	if err != nil {
		log.Printf("got error calling GetItem draft item: %s", err)
		return publish.PostDraft{}, err
	}
	if len(result.Item) == 0 {
		return publish.PostDraft{}, publish.ErrNotFound
	}

	item := tables.PostDraft{}
	err = dynamodbattribute.UnmarshalMap(result.Item, &item)
	if err != nil {
		log.Printf("error unmarshalling draft item: %s", err)
		return publish.PostDraft{}, err
	}
	return toPostDraft(item), nil
}

// MarkPublished flips the draft to published, attaches the provider post id
// and timestamp, and clears any scheduling fields.
func (d *DraftDao) MarkPublished(ctx context.Context, projectID string, draftID string, providerPostID string, text string) error {
	input := &dynamodb.UpdateItemInput{
		Key: map[string]*dynamodb.AttributeValue{
			"ProjectID": {
				S: aws.String(projectID),
			},
			"DraftID": {
				S: aws.String(draftID),
			},
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":s": {
				S: aws.String(string(tables.PUBLISHED)),
			},
			":p": {
				S: aws.String(providerPostID),
			},
			":t": {
				N: aws.String(strconv.FormatInt(time.Now().UnixMilli(), 10)),
			},
			":x": {
				S: aws.String(text),
			},
		},
		ExpressionAttributeNames: map[string]*string{
			"#txt": aws.String("Text"),
		},
		TableName:        aws.String(dynamo_configuration.TABLE_DRAFTS),
		ReturnValues:     aws.String("NONE"),
		UpdateExpression: aws.String("SET PostStatus = :s, ProviderPostID = :p, PublishedAtEpochMilli = :t, #txt = :x REMOVE ScheduledForEpochMilli"),
	}

	_, err := d.svc.UpdateItemWithContext(ctx, input)
	if err != nil {
		log.Printf("error calling UpdateItem to mark draft published: %s", err)
		return err
	}
	return nil
}

// BatchSchedule persists a batch of drafts with a shared scheduled time.
func (d *DraftDao) BatchSchedule(ctx context.Context, projectID string, drafts []publish.PostDraft, scheduledFor time.Time) error {
	for _, draft := range drafts {
		item := toDraftItem(draft)
		item.ProjectID = projectID
		item.PostStatus = tables.SCHEDULED
		item.ScheduledForEpochMilli = scheduledFor.UnixMilli()
		if err := d.Create(ctx, item); err != nil {
			log.Printf("error scheduling draft %s: %s", draft.DraftID, err)
			return err
		}
	}
	return nil
}

func toPostDraft(item tables.PostDraft) publish.PostDraft {
	draft := publish.PostDraft{
		DraftID:        item.DraftID,
		ProjectID:      item.ProjectID,
		Text:           item.Text,
		MediaIDs:       item.MediaIDs,
		ImageURL:       item.ImageURL,
		ReplyToID:      item.ReplyToID,
		GroupID:        item.GroupID,
		ThreadPosition: item.ThreadPosition,
		Status:         publish.PostStatus(item.PostStatus),
		ProviderPostID: item.ProviderPostID,
	}
	if item.ScheduledForEpochMilli > 0 {
		draft.ScheduledFor = time.UnixMilli(item.ScheduledForEpochMilli)
	}
	return draft
}

func toDraftItem(draft publish.PostDraft) tables.PostDraft {
	item := tables.PostDraft{
		ProjectID:      draft.ProjectID,
		DraftID:        draft.DraftID,
		Text:           draft.Text,
		MediaIDs:       draft.MediaIDs,
		ImageURL:       draft.ImageURL,
		ReplyToID:      draft.ReplyToID,
		GroupID:        draft.GroupID,
		ThreadPosition: draft.ThreadPosition,
		PostStatus:     tables.PostStatus(draft.Status),
		ProviderPostID: draft.ProviderPostID,
	}
	if !draft.ScheduledFor.IsZero() {
		item.ScheduledForEpochMilli = draft.ScheduledFor.UnixMilli()
	}
	return item
}
