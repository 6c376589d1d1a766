package dynamo

import (
	"context"
	"fmt"

	"github.com/applicant-intake/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ApplicantRepo reads the applicants table. PK: email (lower-cased).
// Applicants are only ever written by FinalizeTx.
type ApplicantRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewApplicantRepo(client *dynamodb.Client, tableName string) *ApplicantRepo {
	return &ApplicantRepo{client: client, tableName: tableName}
}

func (r *ApplicantRepo) Get(ctx context.Context, email string) (*domain.Applicant, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("email", email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("applicant not found: %w", domain.ErrNotFound)
	}
	var a domain.Applicant
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Exists reports whether an applicant with email has ever been created.
func (r *ApplicantRepo) Exists(ctx context.Context, email string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("email", email),
		ConsistentRead:           aws.Bool(true),
		ProjectionExpression:     aws.String("#e"),
		ExpressionAttributeNames: map[string]string{"#e": "email"},
	})
	if err != nil {
		return false, err
	}
	return out.Item != nil, nil
}
