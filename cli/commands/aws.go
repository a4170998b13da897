package commands

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

// NewSession returns a new AWS session for the settings. Static keys take precedence over the
// shared config profile. A custom endpoint switches to path style addressing, which is what most
// S3 compatible stores expect.
func NewSession(settings *Settings) (*session.Session, error) {
	config := aws.Config{Region: aws.String(settings.Region)}
	if settings.AccessKey != "" || settings.SecretKey != "" {
		config.Credentials = credentials.NewStaticCredentials(settings.AccessKey, settings.SecretKey, "")
	}

	if settings.Endpoint != "" {
		config.Endpoint = aws.String(settings.Endpoint)
		config.S3ForcePathStyle = aws.Bool(true)
	}

	return session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Config:            config,
		Profile:           settings.Profile,
	})
}
