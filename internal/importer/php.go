package importer

import (
	"github.com/elliotchance/phpserialize"
)

// phpList serializes values the way Qubit stores multi-valued properties,
// as a PHP array: a:1:{i:0;s:2:"en";}
func phpList(values ...string) (string, error) {
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	out, err := phpserialize.Marshal(list, phpserialize.DefaultMarshalOptions())
	if err != nil {
		return "", err
	}
	return string(out), nil
}
