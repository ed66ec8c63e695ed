package domain

import "testing"

func TestDefaultDatasetsOrderAndInvariants(t *testing.T) {
	datasets := DefaultDatasets()

	wantOrder := []string{"customers", "products", "transactions"}
	if len(datasets) != len(wantOrder) {
		t.Fatalf("expected %d datasets, got %d", len(wantOrder), len(datasets))
	}
	for i, name := range wantOrder {
		if datasets[i].Name != name {
			t.Fatalf("expected dataset %d to be %s, got %s", i, name, datasets[i].Name)
		}
	}

	for _, ds := range datasets {
		if err := ds.Validate(); err != nil {
			t.Fatalf("dataset %s failed validation: %v", ds.Name, err)
		}
	}
}

func TestDatasetValidate(t *testing.T) {
	valid := Dataset{
		Name:       "things",
		Table:      "public.things",
		Columns:    []Column{{Name: "id", Type: ColumnInteger}},
		PrimaryKey: "id",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid dataset, got %v", err)
	}

	noColumns := valid
	noColumns.Columns = nil
	if err := noColumns.Validate(); err == nil {
		t.Fatalf("expected empty column list to fail validation")
	}

	badKey := valid
	badKey.PrimaryKey = "uuid"
	if err := badKey.Validate(); err == nil {
		t.Fatalf("expected undeclared primary key to fail validation")
	}
}
