package codec

import (
	"strings"
	"testing"
	"time"

	"github.com/nicwaller/loglang-gelf"
)

func TestYamlCodec_Encode(t *testing.T) {
	evt := loglang.NewEvent()
	evt.Message = "boom"
	evt.Timestamp = time.Time{}
	evt.Tags = []string{"x"}

	dat, err := Yaml().Encode(evt)
	if err != nil {
		t.Fatal(err)
	}
	for _, expected := range []string{"'@message': boom", "'@tags':", "- x"} {
		if !strings.Contains(string(dat), expected) {
			t.Errorf(`Expected "%s" in "%s"`, expected, dat)
		}
	}
}

func TestYamlCodec_Decode(t *testing.T) {
	evt, err := Yaml().Decode([]byte("'@message': boom\nhost: web1\ncount: 3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if evt.Message != "boom" {
		t.Errorf(`Expected "%s" but got "%s"`, "boom", evt.Message)
	}
	if evt.Field("host").GetString() != "web1" {
		t.Errorf(`Expected "%s" but got "%s"`, "web1", evt.Field("host").GetString())
	}
	if evt.Field("count").GetInt() != 3 {
		t.Errorf(`Expected %d but got %d`, 3, evt.Field("count").GetInt())
	}
}
