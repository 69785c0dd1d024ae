package twitter

type TweetReferenceType string

// TweetReferenceRetweeted marks a referenced tweet that the post is a retweet of.
const TweetReferenceRetweeted TweetReferenceType = "retweeted"
