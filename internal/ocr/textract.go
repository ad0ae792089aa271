package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/joseph-ayodele/lease-intake/constants"
)

// TextractAPI is the subset of the Textract client used here; *textract.Client satisfies it.
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
	StartDocumentTextDetection(ctx context.Context, params *textract.StartDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.StartDocumentTextDetectionOutput, error)
	GetDocumentTextDetection(ctx context.Context, params *textract.GetDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.GetDocumentTextDetectionOutput, error)
}

// TextractService adapts AWS Textract to Service. Responses are converted to
// Block/Page immediately so SDK types never leave this file.
type TextractService struct {
	client TextractAPI
	logger *slog.Logger
}

func NewTextractService(client TextractAPI, logger *slog.Logger) *TextractService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextractService{client: client, logger: logger}
}

func (s *TextractService) DetectText(ctx context.Context, content []byte) ([]Block, error) {
	out, err := s.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: content},
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("textract: empty response")
	}
	return convertBlocks(out.Blocks), nil
}

func (s *TextractService) StartDetection(ctx context.Context, bucket, key string) (string, error) {
	out, err := s.client.StartDocumentTextDetection(ctx, &textract.StartDocumentTextDetectionInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return aws.ToString(out.JobId), nil
}

func (s *TextractService) GetDetection(ctx context.Context, jobID, nextToken string) (Page, error) {
	in := &textract.GetDocumentTextDetectionInput{JobId: aws.String(jobID)}
	if nextToken != "" {
		in.NextToken = aws.String(nextToken)
	}
	out, err := s.client.GetDocumentTextDetection(ctx, in)
	if err != nil {
		var invalid *types.InvalidJobIdException
		if errors.As(err, &invalid) {
			return Page{}, fmt.Errorf("%w: %v", ErrInvalidJob, err)
		}
		return Page{}, err
	}
	if out == nil {
		return Page{}, errors.New("textract: empty response")
	}

	page := Page{
		Status:        constants.JobStatus(out.JobStatus),
		StatusMessage: aws.ToString(out.StatusMessage),
		Blocks:        convertBlocks(out.Blocks),
		NextToken:     aws.ToString(out.NextToken),
	}
	if out.DocumentMetadata != nil {
		page.DocumentPages = int(aws.ToInt32(out.DocumentMetadata.Pages))
	}
	return page, nil
}

func convertBlocks(in []types.Block) []Block {
	out := make([]Block, 0, len(in))
	for _, b := range in {
		out = append(out, Block{
			Type:       string(b.BlockType),
			Text:       aws.ToString(b.Text),
			Confidence: float64(aws.ToFloat32(b.Confidence)),
		})
	}
	return out
}
