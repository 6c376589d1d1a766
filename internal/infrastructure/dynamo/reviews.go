package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/applicant-intake/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ReviewRepo manages rubric reviews.
// PK: submission_id, SK: reviewer_id.
type ReviewRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReviewRepo(client *dynamodb.Client, tableName string) *ReviewRepo {
	return &ReviewRepo{client: client, tableName: tableName}
}

// Upsert creates or revises the review for (SubmissionID, ReviewerID).
// created_at is preserved on revision.
func (r *ReviewRepo) Upsert(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	now := time.Now().UTC()
	ue, err := buildUpdateExpr(map[string]interface{}{
		"curiosity_vs_ego":               rv.CuriosityVsEgo,
		"participation_vs_spectatorship": rv.ParticipationVsSpectatorship,
		"emotional_intelligence":         rv.EmotionalIntelligence,
		"notes":                          rv.Notes,
		"reviewer_name":                  rv.ReviewerName,
		fieldUpdatedAt:                   now,
	})
	if err != nil {
		return nil, err
	}
	createdAt, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, err
	}
	ue.Names["#created"] = fieldCreatedAt
	ue.Values[":created"] = createdAt

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("submission_id", rv.SubmissionID, "reviewer_id", rv.ReviewerID),
		UpdateExpression:          aws.String(ue.Expr + ", #created = if_not_exists(#created, :created)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert review: %w", err)
	}
	var saved domain.Review
	if err := attributevalue.UnmarshalMap(out.Attributes, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListBySubmission returns every review of one submission.
func (r *ReviewRepo) ListBySubmission(ctx context.Context, submissionID string) ([]domain.Review, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("submission_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: submissionID},
		},
	})
	if err != nil {
		return nil, err
	}
	var reviews []domain.Review
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// GroupBySubmission scans all reviews and groups them by submission id.
func (r *ReviewRepo) GroupBySubmission(ctx context.Context) (map[string][]domain.Review, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	grouped := make(map[string][]domain.Review)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Review
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		for _, rv := range page {
			grouped[rv.SubmissionID] = append(grouped[rv.SubmissionID], rv)
		}
	}
	return grouped, nil
}
