package stations

import "testing"

func TestSearchByCodePrefix(t *testing.T) {
	got := Search("ND")
	if len(got) == 0 {
		t.Fatal("поиск по префиксу кода не дал результатов")
	}
	if got[0].Code != "NDLS" {
		t.Errorf("первый результат %s, ожидался NDLS", got[0].Code)
	}
}

func TestSearchByName(t *testing.T) {
	got := Search("mumbai")
	if len(got) == 0 {
		t.Fatal("поиск по названию не дал результатов")
	}
	for _, s := range got {
		if s.Code == "MMCT" {
			return
		}
	}
	t.Errorf("MMCT не найдена среди результатов: %v", got)
}

func TestSearchCodeMatchesRankFirst(t *testing.T) {
	// "MAS" — код CHENNAI CENTRAL и одновременно подстрока других названий.
	got := Search("MAS")
	if len(got) == 0 || got[0].Code != "MAS" {
		t.Fatalf("совпадение по коду не первое: %v", got)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	if got := Search("  "); got != nil {
		t.Errorf("пустой запрос вернул %v", got)
	}
}

func TestSearchLimit(t *testing.T) {
	// Односимвольный запрос задевает большую часть справочника.
	if got := Search("A"); len(got) > searchLimit {
		t.Errorf("результатов %d, лимит %d", len(got), searchLimit)
	}
}

func TestByCode(t *testing.T) {
	s, ok := ByCode("hwh")
	if !ok || s.Name != "HOWRAH JN" {
		t.Errorf("ByCode(hwh) = %+v, %v", s, ok)
	}
	if _, ok := ByCode("XXXX"); ok {
		t.Error("неизвестный код найден")
	}
}

func TestDatasetCodesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range dataset {
		if seen[s.Code] {
			t.Errorf("код %s встречается дважды", s.Code)
		}
		seen[s.Code] = true
	}
}
