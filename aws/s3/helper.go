package s3

import (
	"fmt"
	"net/url"
	"strings"
)

// AwsS3Object identifies one object in a bucket.
type AwsS3Object struct {
	Bucket string `errorTxt:"bucket name" mandatory:"yes"`
	Key    string `errorTxt:"object key" mandatory:"yes"`
	Region string `errorTxt:"bucket region"`
}

// IsS3Path reports whether path uses the s3:// scheme.
func IsS3Path(path string) bool {
	return strings.HasPrefix(strings.ToLower(path), "s3://")
}

// ParseDSN expects path to be of the form s3://<bucket>/<key>.
// The region may be empty, in which case the AWS SDK default chain is used.
func ParseDSN(path string, region string) (retval AwsS3Object, err error) {
	expectedScheme := "s3"
	s3url, err := url.Parse(path)
	if err != nil {
		return retval, fmt.Errorf("error parsing S3 URL: %v", err)
	}
	if s3url.Scheme != expectedScheme {
		return retval, fmt.Errorf("expected S3 URL scheme %q but got %q", expectedScheme, s3url.Scheme)
	}
	retval.Bucket = s3url.Host
	if retval.Bucket == "" {
		return retval, fmt.Errorf("S3 URL %q is missing a bucket name", path)
	}
	retval.Key = strings.TrimLeft(s3url.Path, "/")
	if retval.Key == "" || strings.HasSuffix(retval.Key, "/") {
		return retval, fmt.Errorf("S3 URL %q does not name an object", path)
	}
	retval.Region = region
	return
}

func (o AwsS3Object) String() string {
	return fmt.Sprintf("s3://%v/%v", o.Bucket, o.Key)
}
