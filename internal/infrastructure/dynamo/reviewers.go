package dynamo

import (
	"context"
	"fmt"

	"github.com/applicant-intake/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ReviewerRepo manages panel accounts. PK: email (lower-cased).
type ReviewerRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReviewerRepo(client *dynamodb.Client, tableName string) *ReviewerRepo {
	return &ReviewerRepo{client: client, tableName: tableName}
}

func (r *ReviewerRepo) GetByEmail(ctx context.Context, email string) (*domain.Reviewer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("reviewer not found: %w", domain.ErrNotFound)
	}
	var rv domain.Reviewer
	if err := attributevalue.UnmarshalMap(out.Item, &rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

// PutIfAbsent writes rv unless a reviewer with the same email exists.
func (r *ReviewerRepo) PutIfAbsent(ctx context.Context, rv *domain.Reviewer) (bool, error) {
	item, err := attributevalue.MarshalMap(rv)
	if err != nil {
		return false, fmt.Errorf("marshal reviewer: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#e)"),
		ExpressionAttributeNames: map[string]string{"#e": "email"},
	})
	if conditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
