// Package phonetic backfills missing IPA transcriptions on vocabulary cards
// using OpenAI's GPT models. The backend usually supplies phonetics with each
// card; this covers older packs generated before it did.
package phonetic
